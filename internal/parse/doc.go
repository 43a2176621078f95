// Package parse turns raw post text into agent mentions and slash-commands.
//
// Parsing is pure and total: it never returns an error. Text with no
// recognizable tokens yields empty results, unknown or disabled agent
// handles are dropped, and a command with a missing argument is simply not
// recognized. The same text always parses to the same result against the
// same registry snapshot.
package parse
