package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mikeboe/research-agent/pkg/agent"
	"github.com/mikeboe/research-agent/pkg/clients"
	"github.com/mikeboe/research-agent/pkg/config"
)

var (
	question   string
	queryCount int
	maxLoops   int
)

func main() {
	// Setup structured logging
	handler := slog.NewTextHandler(os.Stdout, nil)
	slog.SetDefault(slog.New(handler))

	// Load .env file
	if err := godotenv.Load(); err != nil {
		// It's okay if .env doesn't exist, as long as env vars are set
	}

	cfg := config.Load()

	rootCmd := &cobra.Command{
		Use:   "research-agent",
		Short: "A terminal-based web research agent",
		Long:  `research-agent answers a question by iteratively searching the web, reflecting on the gathered evidence, and synthesizing a cited answer.`,
		Run: func(cmd *cobra.Command, args []string) {
			if !cmd.Flags().Changed("question") {
				// Interactive Mode
				reader := bufio.NewReader(os.Stdin)
				fmt.Print("Enter research question: ")
				input, _ := reader.ReadString('\n')
				question = strings.TrimSpace(input)
			}
			if question == "" {
				slog.Error("Question cannot be empty")
				os.Exit(1)
			}
			if cfg.GeminiApiKey == "" {
				slog.Error("GEMINI_API_KEY is not set")
				os.Exit(1)
			}

			runCfg := agent.Config{
				InitialQueryCount:   cfg.InitialQueryCount,
				MaxResearchLoops:    cfg.MaxResearchLoops,
				QueryGeneratorModel: cfg.QueryGeneratorModel,
				ReflectionModel:     cfg.ReflectionModel,
				AnswerModel:         cfg.AnswerModel,
			}
			if cmd.Flags().Changed("queries") && queryCount >= 1 {
				runCfg.InitialQueryCount = queryCount
			}
			if cmd.Flags().Changed("loops") && maxLoops >= 0 {
				runCfg.MaxResearchLoops = maxLoops
			}

			ctx := context.Background()

			llm, err := clients.GoogleAI(ctx, cfg.GeminiApiKey, runCfg.QueryGeneratorModel)
			if err != nil {
				slog.Error("Error initializing LLM client", "error", err)
				os.Exit(1)
			}
			search, err := clients.NewGroundedClient(ctx, cfg.GeminiApiKey)
			if err != nil {
				slog.Error("Error initializing search client", "error", err)
				os.Exit(1)
			}

			engine := agent.NewEngine(runCfg, llm, search, slog.Default())

			slog.Info("Starting research", "question", question, "queries", runCfg.InitialQueryCount, "max_loops", runCfg.MaxResearchLoops)

			conv := agent.Conversation{{Role: agent.RoleUser, Content: question}}
			result, err := engine.Run(ctx, conv)
			if err != nil {
				slog.Error("Error running research", "error", err)
				os.Exit(1)
			}

			fmt.Println()
			fmt.Println(result.Message.Content)
			if len(result.CitedSources) > 0 {
				fmt.Println()
				fmt.Println("Sources:")
				for _, src := range result.CitedSources {
					fmt.Printf("  [%d] %s (%s)\n", src.ID, src.Title, src.URL)
				}
			}
		},
	}

	rootCmd.Flags().StringVarP(&question, "question", "q", "", "The research question")
	rootCmd.Flags().IntVar(&queryCount, "queries", 0, "Initial number of search queries")
	rootCmd.Flags().IntVar(&maxLoops, "loops", -1, "Maximum number of research loops")

	if err := rootCmd.Execute(); err != nil {
		slog.Error("Command execution failed", "error", err)
		os.Exit(1)
	}
}
