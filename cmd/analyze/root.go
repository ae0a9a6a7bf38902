package main

import (
	"context"
	"fmt"
	"io"

	"log-risk-analyzer/internal/analyzer"
	"log-risk-analyzer/internal/config"
	"log-risk-analyzer/internal/logger"
	"log-risk-analyzer/internal/metrics"
	"log-risk-analyzer/internal/model"
	"log-risk-analyzer/internal/pipeline"
	"log-risk-analyzer/internal/storage"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type options struct {
	bucket    string
	key       string
	file      string
	printLogs bool
}

// newRootCmd 는 one-shot analyze 명령을 만든다.
// 출력 대상과 환경변수 조회를 주입받아 테스트에서 그대로 실행할 수 있다.
func newRootCmd(stdout, stderr io.Writer, getenv func(string) string) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a log artifact once and print the simulated decision",
		Long: `analyze fetches one log file (S3 or local), asks the completion model for a
risk assessment and prints the simulated remediation decision.

Configuration comes from the same environment variables as the server
(OPENAI_API_KEY, OPENAI_MODEL, LOG_BUCKET, LOG_KEY, ...).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Parse(getenv)
			if err != nil {
				return err
			}
			// stdout 은 결과 전용
			logger.InitWriter(cfg, stderr)

			return run(cmd.Context(), cfg, opts, stdout)
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cmd.Flags().StringVarP(&opts.bucket, "bucket", "b", "", "S3 bucket (default LOG_BUCKET)")
	cmd.Flags().StringVarP(&opts.key, "key", "k", "", "S3 object key (default LOG_KEY)")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Read logs from a local file instead of S3")
	cmd.Flags().BoolVar(&opts.printLogs, "print-logs", true, "Print the fetched log text before the analysis")

	return cmd
}

func run(ctx context.Context, cfg config.Config, opts options, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	bucket, key := cfg.LogBucket, cfg.LogKey
	if opts.bucket != "" {
		bucket = opts.bucket
	}
	if opts.key != "" {
		key = opts.key
	}

	var reader storage.ObjectReader
	if opts.file != "" {
		reader = storage.FileReader{}
		bucket, key = "", opts.file
	} else {
		s3r, err := storage.NewS3Reader(ctx, cfg)
		if err != nil {
			return err
		}
		reader = s3r
	}

	m := metrics.New()
	requester := analyzer.New(analyzer.ConfigFrom(cfg), analyzer.WithMetrics(m))

	if opts.printLogs {
		reader = &echoReader{next: reader, out: out}
	}

	rep, err := pipeline.New(reader, requester, m).Run(ctx, bucket, key)
	if err != nil {
		log.Debug().Str("kind", pipeline.Kind(err)).Msg("analyze failed")
		return err
	}

	return printReport(out, rep)
}

// echoReader 는 읽은 로그를 분석 전에 섹션으로 출력한다.
type echoReader struct {
	next storage.ObjectReader
	out  io.Writer
}

func (e *echoReader) Read(ctx context.Context, bucket, key string) ([]byte, error) {
	b, err := e.next.Read(ctx, bucket, key)
	if err != nil {
		return nil, err
	}
	section(e.out, "LOGS")
	fmt.Fprintln(e.out, storage.DecodeText(b))
	return b, nil
}

func printReport(out io.Writer, rep model.Report) error {
	section(out, "AI ANALYSIS (JSON)")
	if err := writeIndented(out, rep.Analysis); err != nil {
		return err
	}

	section(out, "DECISION / ACTION")
	if err := writeIndented(out, rep.Decision); err != nil {
		return err
	}

	section(out, "REPORT")
	return writeIndented(out, rep)
}

func section(out io.Writer, title string) {
	fmt.Fprintf(out, "===== %s =====\n", title)
}

func writeIndented(out io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(b))
	return err
}
