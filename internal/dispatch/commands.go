// ABOUTME: Background jobs for slash-commands: media, search, scrape, and email
// ABOUTME: Every outcome becomes a system-authored reply post; nothing propagates

package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yaam/agentboard/internal/audit"
	"github.com/yaam/agentboard/internal/metrics"
	"github.com/yaam/agentboard/internal/parse"
	"github.com/yaam/agentboard/internal/services"
	"github.com/yaam/agentboard/internal/store"
)

const (
	systemHandle     = "system"
	maxScrapeExcerpt = 500
	maxSearchResults = 5
)

// executeCommand runs one slash-command job. Success and failure both
// end in a reply post; a disabled service gets a plainly labeled
// "not enabled" reply instead of an error.
func (d *Dispatcher) executeCommand(ctx context.Context, cmd parse.Command, trigger *store.Post, userID string) {
	timeout := d.generateTimeout
	if cmd.Kind == parse.CommandVideo || cmd.Kind == parse.CommandImage {
		timeout = d.mediaTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	reply, mediaEvent, err := d.runCommand(ctx, cmd, trigger, userID)

	switch {
	case errors.Is(err, services.ErrNotEnabled):
		d.commandReply(trigger, fmt.Sprintf("⚠️ /%s is not enabled on this server.", cmd.Kind))
		d.auditCommand(cmd, trigger, userID, audit.EventCommandFailed, err)
		metrics.CommandsExecuted.WithLabelValues(string(cmd.Kind), "disabled").Inc()
	case err != nil:
		d.logger.Error("command failed", "kind", cmd.Kind, "error", err)
		d.commandReply(trigger, fmt.Sprintf("❌ /%s failed: %v", cmd.Kind, err))
		d.auditCommand(cmd, trigger, userID, audit.EventCommandFailed, err)
		metrics.CommandsExecuted.WithLabelValues(string(cmd.Kind), "error").Inc()
	default:
		d.commandReply(trigger, reply)
		d.auditCommand(cmd, trigger, userID, audit.EventCommandExecuted, nil)
		if mediaEvent != "" {
			d.audit.Log(audit.Entry{
				Type:     mediaEvent,
				UserID:   userID,
				ThreadID: trigger.ThreadID,
				PostID:   trigger.ID,
				Details:  map[string]any{"args": cmd.Args, "duration_ms": time.Since(start).Milliseconds()},
			})
		}
		metrics.CommandsExecuted.WithLabelValues(string(cmd.Kind), "ok").Inc()
	}
}

// runCommand dispatches to the matching service and formats the reply
// body. The second return value names the media audit event to emit on
// success, when the command produced an asset.
func (d *Dispatcher) runCommand(ctx context.Context, cmd parse.Command, trigger *store.Post, userID string) (string, audit.EventType, error) {
	start := time.Now()

	switch cmd.Kind {
	case parse.CommandImage:
		prompt := cmd.Args["prompt"]
		url, err := d.services.GenerateImage(ctx, prompt)
		if err != nil {
			return "", "", err
		}
		d.audit.RecordMedia(audit.MediaAsset{
			Kind:        "image",
			Prompt:      prompt,
			URL:         url,
			RequestedBy: userID,
			ThreadID:    trigger.ThreadID,
			DurationMS:  time.Since(start).Milliseconds(),
		})
		return fmt.Sprintf("🖼️ Generated image for \"%s\":\n%s", prompt, url), audit.EventMediaImageGenerate, nil

	case parse.CommandVideo:
		prompt := cmd.Args["prompt"]
		url, err := d.services.GenerateVideo(ctx, prompt)
		if err != nil {
			return "", "", err
		}
		d.audit.RecordMedia(audit.MediaAsset{
			Kind:        "video",
			Prompt:      prompt,
			URL:         url,
			RequestedBy: userID,
			ThreadID:    trigger.ThreadID,
			DurationMS:  time.Since(start).Milliseconds(),
		})
		return fmt.Sprintf("🎬 Generated video for \"%s\":\n%s", prompt, url), audit.EventMediaVideoGenerate, nil

	case parse.CommandSearch:
		query := cmd.Args["query"]
		results, err := d.services.Search(ctx, query)
		if err != nil {
			return "", "", err
		}
		return formatSearchResults(query, results), audit.EventMediaSearch, nil

	case parse.CommandScrape:
		url := cmd.Args["url"]
		body, err := d.services.Scrape(ctx, url)
		if err != nil {
			return "", "", err
		}
		excerpt := body
		if len(excerpt) > maxScrapeExcerpt {
			excerpt = excerpt[:maxScrapeExcerpt] + "…"
		}
		return fmt.Sprintf("📄 Scraped %s:\n\n%s", url, excerpt), "", nil

	case parse.CommandEmail:
		to := cmd.Args["to"]
		content := cmd.Args["content"]
		if content == "" {
			content = fmt.Sprintf("Update from thread %s:\n\n%s", trigger.ThreadID, trigger.Text)
		}
		if err := d.services.SendEmail(ctx, to, "Thread update", content); err != nil {
			return "", "", err
		}
		return fmt.Sprintf("📧 Email sent to %s.", to), "", nil

	default:
		return "", "", fmt.Errorf("unknown command kind %q", cmd.Kind)
	}
}

func formatSearchResults(query string, results []services.SearchResult) string {
	if len(results) == 0 {
		return fmt.Sprintf("🔍 No results found for \"%s\".", query)
	}
	if len(results) > maxSearchResults {
		results = results[:maxSearchResults]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🔍 Top results for \"%s\":\n", query)
	for i, r := range results {
		fmt.Fprintf(&b, "\n%d. **%s**\n%s\n%s\n", i+1, r.Title, r.Snippet, r.Link)
	}
	return b.String()
}

func (d *Dispatcher) commandReply(trigger *store.Post, text string) {
	d.store.CreateReply(store.AuthorSystem, systemHandle, text, trigger.ID, trigger.ThreadID)
	metrics.PostsCreated.WithLabelValues(string(store.AuthorSystem)).Inc()
}

func (d *Dispatcher) auditCommand(cmd parse.Command, trigger *store.Post, userID string, t audit.EventType, cause error) {
	e := audit.Entry{
		Type:         t,
		UserID:       userID,
		ResourceType: "command",
		ResourceID:   string(cmd.Kind),
		ThreadID:     trigger.ThreadID,
		PostID:       trigger.ID,
		Details:      map[string]any{"args": cmd.Args, "span": cmd.Span},
	}
	if cause != nil {
		e.Status = audit.StatusFailure
		e.ErrorMessage = cause.Error()
	}
	d.audit.Log(e)
}
