package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var (
	baseURL string
	timeout time.Duration
	token   string
)

// bcryptGenerate is swapped out in tests.
var bcryptGenerate = bcrypt.GenerateFromPassword

func main() {
	rootCmd := &cobra.Command{
		Use:   "splitledger-cli",
		Short: "SplitLedger CLI tool",
		Long:  `A command line interface for interacting with the SplitLedger API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the SplitLedger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("SPLITLEDGER_TOKEN"), "Bearer token (defaults to SPLITLEDGER_TOKEN)")

	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(groupCmd())
	rootCmd.AddCommand(hashPasswordCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login <email> <password>",
		Short: "Log in and print a bearer token",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, _ := json.Marshal(map[string]string{
				"email":    args[0],
				"password": args[1],
			})

			client := &http.Client{Timeout: timeout}
			resp, err := client.Post(baseURL+"/api/v1/auth/login", "application/json", bytes.NewReader(body))
			if err != nil {
				return fmt.Errorf("login request failed: %w", err)
			}
			defer resp.Body.Close()

			raw, _ := io.ReadAll(resp.Body)
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("login failed (status %d): %s", resp.StatusCode, string(raw))
			}

			var result struct {
				Token string `json:"token"`
			}
			if err := json.Unmarshal(raw, &result); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			fmt.Println(result.Token)
			return nil
		},
	}
}

func groupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Group operations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "balances <group-id>",
		Short: "Show each member's net position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var balances []struct {
				ParticipantID string `json:"participant_id"`
				Name          string `json:"name"`
				Amount        string `json:"amount"`
			}
			if err := apiGet("/api/v1/groups/"+args[0]+"/balances", &balances); err != nil {
				return err
			}

			fmt.Printf("%-28s %-20s %s\n", "PARTICIPANT", "NAME", "NET")
			for _, b := range balances {
				fmt.Printf("%-28s %-20s %s\n", b.ParticipantID, truncate(b.Name, 20), b.Amount)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "debts <group-id>",
		Short: "Show the who-owes-whom matrix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var debts []struct {
				From   string `json:"from"`
				To     string `json:"to"`
				Amount string `json:"amount"`
			}
			if err := apiGet("/api/v1/groups/"+args[0]+"/debts", &debts); err != nil {
				return err
			}

			fmt.Printf("%-28s %-28s %s\n", "FROM", "TO", "AMOUNT")
			for _, d := range debts {
				fmt.Printf("%-28s %-28s %s\n", d.From, d.To, d.Amount)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "settlements <group-id>",
		Short: "Suggest a minimal settlement plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result json.RawMessage
			if err := apiGet("/api/v1/groups/"+args[0]+"/settlements", &result); err != nil {
				return err
			}
			printJSON(result)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "summary <group-id>",
		Short: "Show the group's spending summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result json.RawMessage
			if err := apiGet("/api/v1/groups/"+args[0]+"/summary", &result); err != nil {
				return err
			}
			printJSON(result)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "consistency <group-id>",
		Short: "Check the group's zero-sum invariant",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result map[string]any
			if err := apiGet("/api/v1/groups/"+args[0]+"/consistency", &result); err != nil {
				return err
			}

			if consistent, ok := result["consistent"].(bool); ok && consistent {
				fmt.Println("Consistency check PASSED")
			} else {
				fmt.Printf("Consistency check FAILED (sum: %v)\n", result["sum"])
				os.Exit(1)
			}
			return nil
		},
		Args: cobra.ExactArgs(1),
	})

	return cmd
}

func hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Hash a password for seeding users directly",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := bcryptGenerate([]byte(args[0]), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}
			fmt.Println(string(hash))
			return nil
		},
	}
}

// apiGet performs an authenticated GET and decodes the JSON response.
func apiGet(path string, out any) error {
	req, err := http.NewRequest(http.MethodGet, baseURL+path, nil)
	if err != nil {
		return err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request failed (status %d): %s", resp.StatusCode, string(raw))
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("failed to render output: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
