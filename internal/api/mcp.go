package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kalambet/murmur/internal/emotion"
	"github.com/kalambet/murmur/internal/match"
	"github.com/kalambet/murmur/internal/session"
	"github.com/kalambet/murmur/internal/storage"
	"github.com/kalambet/murmur/internal/wellness"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Pipeline   *emotion.Pipeline
	Scorer     *match.Scorer
	Aggregator *wellness.Aggregator
	Store      *storage.Store
	Sessions   session.Store
}

// NewMCPServer creates an MCP server with all murmur tools and resources
// registered.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"murmur",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions("murmur: emotion inference, compatibility matching, and session wellness reports for voice journaling."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("classify_emotion",
			mcp.WithDescription("Classify the emotional content of a journal entry. Returns emotion label, intensity, confidence, and provenance."),
			mcp.WithString("text", mcp.Description("The journal text to classify"), mcp.Required()),
			mcp.WithString("profile_id", mcp.Description("Optional profile id; when given, the result is recorded to the profile's history")),
		),
		mcpClassify(deps),
	)

	s.AddTool(
		mcp.NewTool("match_profiles",
			mcp.WithDescription("Score compatibility between two stored profiles. Returns total score, per-factor breakdown, tier, and reasoning."),
			mcp.WithString("profile_a", mcp.Description("First profile id"), mcp.Required()),
			mcp.WithString("profile_b", mcp.Description("Second profile id"), mcp.Required()),
		),
		mcpMatch(deps),
	)

	s.AddTool(
		mcp.NewTool("session_report",
			mcp.WithDescription("Build a wellness report for a live session and close it. Returns score, dominant emotion, recommendations, places, and communities."),
			mcp.WithString("session_id", mcp.Description("Session id to summarize"), mcp.Required()),
		),
		mcpSessionReport(deps),
	)

	return s
}

func mcpClassify(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := req.RequireString("text")
		if err != nil {
			return mcpError("text is required"), nil
		}
		if strings.TrimSpace(text) == "" {
			return mcpError("text is required"), nil
		}

		result, err := deps.Pipeline.Classify(ctx, text)
		if err != nil {
			return mcpError(fmt.Sprintf("classification failed: %v", err)), nil
		}

		if profileID := req.GetString("profile_id", ""); profileID != "" {
			rec := storage.EmotionRecord{
				ID:         uuid.New().String(),
				ProfileID:  profileID,
				Emotion:    string(result.Emotion),
				Intensity:  result.Intensity,
				Confidence: result.Confidence,
				Provenance: result.Provenance,
				Reasoning:  result.Reasoning,
				CreatedAt:  time.Now().UTC(),
			}
			if err := deps.Store.AppendEmotion(rec); err != nil {
				return mcpError(fmt.Sprintf("classified but failed to record: %v", err)), nil
			}
		}

		b, err := json.Marshal(result)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpMatch(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		idA, err := req.RequireString("profile_a")
		if err != nil {
			return mcpError("profile_a is required"), nil
		}
		idB, err := req.RequireString("profile_b")
		if err != nil {
			return mcpError("profile_b is required"), nil
		}

		a, err := loadMatchProfile(deps.Store, idA)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to load profile %s: %v", idA, err)), nil
		}
		b, err := loadMatchProfile(deps.Store, idB)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to load profile %s: %v", idB, err)), nil
		}

		score := deps.Scorer.Score(a, b)

		out, err := json.Marshal(score)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal score: %v", err)), nil
		}
		return mcpText(string(out)), nil
	}
}

func mcpSessionReport(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("session_id")
		if err != nil {
			return mcpError("session_id is required"), nil
		}

		sess, err := deps.Sessions.Get(id)
		if errors.Is(err, session.ErrNotFound) {
			return mcpError("session not found"), nil
		}
		if err != nil {
			return mcpError(fmt.Sprintf("failed to get session: %v", err)), nil
		}

		entries := make([]emotion.Result, len(sess.Turns))
		texts := make([]string, len(sess.Turns))
		for i, t := range sess.Turns {
			entries[i] = t.Result
			texts[i] = t.Text
		}

		report, err := deps.Aggregator.Summarize(ctx, entries, wellness.Options{
			Transcript: strings.Join(texts, "\n"),
		})
		if errors.Is(err, wellness.ErrEmptySession) {
			return mcpError("session has no turns"), nil
		}
		if err != nil {
			return mcpError(fmt.Sprintf("failed to build report: %v", err)), nil
		}

		deps.Sessions.Delete(id)

		b, err := json.Marshal(report)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal report: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
