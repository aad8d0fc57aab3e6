package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kalambet/murmur/internal/config"
	"github.com/kalambet/murmur/internal/emotion"
	"github.com/kalambet/murmur/internal/match"
	"github.com/kalambet/murmur/internal/session"
	"github.com/kalambet/murmur/internal/transcript"
	"github.com/kalambet/murmur/internal/wellness"
)

// --- classify ---

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify the emotional content of a journal entry",
	Long: `Classify the emotional content of a journal entry.

Examples:
  murmur classify --text "I finally finished the marathon and I am thrilled"
  murmur classify --file ./entry.pdf
  murmur classify --text "rough day at work" --profile ana`,
	RunE: func(cmd *cobra.Command, args []string) error {
		text, _ := cmd.Flags().GetString("text")
		file, _ := cmd.Flags().GetString("file")
		profileID, _ := cmd.Flags().GetString("profile")

		if text == "" && file == "" {
			return fmt.Errorf("one of --text or --file is required")
		}
		if file != "" {
			content, err := transcript.Read(file)
			if err != nil {
				return fmt.Errorf("reading transcript: %w", err)
			}
			text = content
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		req := map[string]any{"text": text}
		if profileID != "" {
			req["profile_id"] = profileID
		}

		resp, err := client.post(cmd.Context(), "/classify", req)
		if err != nil {
			return err
		}

		var result emotion.Result
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		renderResult(os.Stdout, result)
		return nil
	},
}

func init() {
	classifyCmd.Flags().String("text", "", "journal text to classify")
	classifyCmd.Flags().String("file", "", "transcript file to classify (plain text or PDF)")
	classifyCmd.Flags().String("profile", "", "profile id to record the result under")
}

// --- match ---

var matchCmd = &cobra.Command{
	Use:   "match <profile-a> <profile-b>",
	Short: "Score compatibility between two profiles",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		req := map[string]string{
			"profile_a": args[0],
			"profile_b": args[1],
		}
		resp, err := client.post(cmd.Context(), "/match", req)
		if err != nil {
			return err
		}

		var score match.Score
		if err := decodeJSON(resp, &score); err != nil {
			return err
		}

		renderScore(os.Stdout, score)
		return nil
	},
}

// --- report ---

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Build a wellness report from a transcript file",
	Long: `Build a wellness report from a transcript file.

The transcript is split into entries (one per non-empty line), each
entry is classified as a session turn, and the session is closed with
a report.

Examples:
  murmur report --file ./journal.txt
  murmur report --file ./session.pdf --profile ana`,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		profileID, _ := cmd.Flags().GetString("profile")

		if file == "" {
			return fmt.Errorf("--file is required")
		}
		content, err := transcript.Read(file)
		if err != nil {
			return fmt.Errorf("reading transcript: %w", err)
		}

		entries := splitEntries(content)
		if len(entries) == 0 {
			return fmt.Errorf("transcript has no entries")
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		resp, err := client.post(ctx, "/sessions", map[string]string{"profile_id": profileID})
		if err != nil {
			return err
		}
		var sess session.Session
		if err := decodeJSON(resp, &sess); err != nil {
			return err
		}

		printStep("Classifying %d entries...", len(entries))
		for _, entry := range entries {
			resp, err := client.post(ctx, "/sessions/"+sess.ID+"/turns", map[string]string{"text": entry})
			if err != nil {
				return err
			}
			var turn struct {
				Result emotion.Result `json:"result"`
			}
			if err := decodeJSON(resp, &turn); err != nil {
				return err
			}
		}

		resp, err = client.post(ctx, "/sessions/"+sess.ID+"/report", nil)
		if err != nil {
			return err
		}
		var report wellness.Report
		if err := decodeJSON(resp, &report); err != nil {
			return err
		}

		renderReport(os.Stdout, report)
		return nil
	},
}

func init() {
	reportCmd.Flags().String("file", "", "transcript file (plain text or PDF)")
	reportCmd.Flags().String("profile", "", "profile id to record turns under")
}

// splitEntries breaks a transcript into one entry per non-empty line.
func splitEntries(content string) []string {
	var entries []string
	sc := bufio.NewScanner(strings.NewReader(content))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" {
			entries = append(entries, line)
		}
	}
	return entries
}

// --- profile ---

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage stored profiles",
}

var profileShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a profile as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/profiles/"+args[0])
		if err != nil {
			return err
		}

		var profile any
		if err := decodeJSON(resp, &profile); err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(profile)
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set <id>",
	Short: "Create or update a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		city, _ := cmd.Flags().GetString("city")
		age, _ := cmd.Flags().GetInt("age")
		interestsStr, _ := cmd.Flags().GetString("interests")

		req := map[string]any{
			"display_name": name,
			"city":         city,
		}
		if age > 0 {
			req["age"] = age
		}
		if interestsStr != "" {
			interests := strings.Split(interestsStr, ",")
			for i := range interests {
				interests[i] = strings.TrimSpace(interests[i])
			}
			req["interests"] = interests
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.put(cmd.Context(), "/profiles/"+args[0], req)
		if err != nil {
			return err
		}

		var result map[string]string
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("Profile %s updated", args[0])
		return nil
	},
}

func init() {
	profileSetCmd.Flags().String("name", "", "display name")
	profileSetCmd.Flags().String("city", "", "home city")
	profileSetCmd.Flags().Int("age", 0, "age in years")
	profileSetCmd.Flags().String("interests", "", "comma-separated interests")

	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileSetCmd)
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		keys := config.ShowAll(cfg)
		for _, k := range keys {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
