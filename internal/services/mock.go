// ABOUTME: Deterministic offline text generator used when no LLM backend is configured
// ABOUTME: Produces a canned per-agent reply shaped by the trigger text

package services

import (
	"context"
	"fmt"
)

// MockGenerator is the fallback Generator. Replies are deterministic
// for a given agent and trigger so the board stays usable offline.
type MockGenerator struct{}

// NewMockGenerator returns the offline generator.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// Generate returns a canned per-agent reply. It never fails.
func (g *MockGenerator) Generate(_ context.Context, req GenerateRequest) (string, error) {
	excerpt := clip(req.Prompt, 200)
	handle := ""
	if req.Profile != nil {
		handle = req.Profile.Handle
	}

	switch handle {
	case "grok":
		return fmt.Sprintf("Alright, here's the deal: %s... is basically about understanding the fundamentals. Keep it simple.", clip(excerpt, 50)), nil
	case "factcheck":
		return "🔍 **Claim Analysis**\n\n**Points to verify:**\n• Specific data points mentioned\n• Timeline accuracy\n• Source attribution\n\n**Status:** Requires fact-checking from reliable sources.", nil
	case "summarizer":
		return fmt.Sprintf("📋 **TL;DR**\n\n**Key Points:**\n• Main topic: %s...\n• Core issue identified\n\n**Action Items:**\n• Review findings\n• Identify next steps", clip(excerpt, 30)), nil
	case "writer":
		return fmt.Sprintf("✍️ **Here are 3 versions:**\n\n**Punchy:**\n%s... but make it unforgettable.\n\n**Professional:**\nRegarding %s..., a structured approach yields optimal results.\n\n**Casual:**\nSo %s...? Keep it real.", clip(excerpt, 40), clip(excerpt, 35), clip(excerpt, 30)), nil
	case "dev":
		return fmt.Sprintf("⚡ **Technical Solution**\n\n```\n// Approach for: %s...\nfunc solution() { extract the core issue, build, test }\n```\n\n**Notes:** Keep it modular and testable.", clip(excerpt, 30)), nil
	case "analyst":
		return fmt.Sprintf("📊 **Decision Matrix**\n\n| Criteria | Option A | Option B |\n|----------|----------|----------|\n| Cost     | Low      | Medium   |\n| Time     | Fast     | Medium   |\n\n**Recommendation:** Evaluate based on your priorities for %s...", clip(excerpt, 25)), nil
	case "researcher":
		return fmt.Sprintf("🔬 **Research Summary**\n\n**Background on %s...**\n\n1. Key findings from recent studies\n2. Expert consensus on the topic\n3. Areas requiring further investigation\n\n**Bottom Line:** Well-documented with clear guidelines available.", clip(excerpt, 40)), nil
	case "coach":
		return fmt.Sprintf("🎯 **Coaching Framework**\n\n**Your Goal:** %s...\n\n**Steps:**\n1. Clarify exactly what you want\n2. Break into weekly milestones\n3. Start with smallest action today\n\n**You've got this! Progress > Perfection.**", clip(excerpt, 40)), nil
	default:
		return fmt.Sprintf("Hi! I'm %s. I received: %s...", handle, clip(excerpt, 100)), nil
	}
}

func clip(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
