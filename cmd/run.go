package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/deep-research/internal/render"
)

var (
	runTopic   string
	runNoStore bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a research report for a single topic",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		topic := strings.TrimSpace(runTopic)
		if topic == "" {
			fmt.Fprint(os.Stderr, "Research topic: ")
			line, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil {
				return eris.Wrap(err, "read topic")
			}
			topic = strings.TrimSpace(line)
		}
		if topic == "" {
			return eris.New("topic is required")
		}

		w, cleanup, err := initWorkflow(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		result, err := w.Run(ctx, topic)
		if err != nil {
			return eris.Wrap(err, "workflow run")
		}

		mdPath, err := render.New(cfg.Render.OutDir).Render(topic, result.Report)
		if err != nil {
			return eris.Wrap(err, "render report")
		}
		zap.L().Info("report rendered", zap.String("path", mdPath))

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	runCmd.Flags().StringVar(&runTopic, "topic", "", "research topic (prompted interactively when omitted)")
	runCmd.Flags().BoolVar(&runNoStore, "no-store", false, "skip run persistence and search caching")
	rootCmd.AddCommand(runCmd)
}
