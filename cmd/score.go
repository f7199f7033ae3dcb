package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/divya16-bit/ApplyBee/internal/jd"
	"github.com/divya16-bit/ApplyBee/internal/scoring"
)

// maxParallelScores bounds how many job descriptions are scored at once.
const maxParallelScores = 4

type scoreReport struct {
	JD       string         `json:"jd"`
	Sections jd.Sections    `json:"jd_sections"`
	Result   scoring.Result `json:"result"`
	Warnings []string       `json:"warnings,omitempty"`
}

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a resume against one or more job descriptions",
	Run: func(cmd *cobra.Command, _ []string) {
		score(cmd)
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringP("resume", "r", "", "resume file (.pdf, .docx or .txt)")
	scoreCmd.Flags().StringArray("jd", nil, "job description file, may be repeated")
	scoreCmd.Flags().Bool("html", false, "treat job description files as HTML")
	scoreCmd.Flags().Bool("explain", false, "add a natural-language explanation (requires ai.enabled and ai.explain)")
	scoreCmd.Flags().StringSlice("jd-skills", nil, "explicit job description skills, used for every job description")

	_ = scoreCmd.MarkFlagRequired("resume")
	_ = scoreCmd.MarkFlagRequired("jd")
}

func score(cmd *cobra.Command) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger, _, deps := setup(ctx)
	defer deps.Close()

	resumePath, _ := cmd.Flags().GetString("resume")
	jdPaths, _ := cmd.Flags().GetStringArray("jd")
	asHTML, _ := cmd.Flags().GetBool("html")
	explain, _ := cmd.Flags().GetBool("explain")
	jdSkills, _ := cmd.Flags().GetStringSlice("jd-skills")

	resume, err := readResume(resumePath)
	if err != nil {
		logger.Fatal("reading resume", zap.Error(err))
	}

	reports := make([]scoreReport, len(jdPaths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelScores)
	for i, path := range jdPaths {
		g.Go(func() error {
			sections, fullText, err := readJobDescription(path, asHTML)
			if err != nil {
				return err
			}

			out := deps.scorer.CalculateMatchScore(gctx, scoring.Input{
				ResumeText:        resume,
				Sections:          sections,
				JDSkillsExtracted: jdSkills,
				JDFullText:        fullText,
				Explain:           explain,
			})
			if out.Degraded() {
				logger.Warn("score computed with degraded signal",
					zap.String("jd", path),
					zap.Strings("warnings", out.Warnings),
				)
			}

			reports[i] = scoreReport{
				JD:       path,
				Sections: sections,
				Result:   out.Result,
				Warnings: out.Warnings,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Fatal("scoring job descriptions", zap.Error(err))
	}

	if err := writeJSON(cmd.OutOrStdout(), reports); err != nil {
		logger.Fatal("writing results", zap.Error(err))
	}
}

func readJobDescription(path string, asHTML bool) (jd.Sections, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return jd.Sections{}, "", fmt.Errorf("read job description: %w", err)
	}

	text, html := string(data), ""
	if asHTML || isHTMLFile(path) {
		text, html = "", string(data)
	}

	sections, fullText, err := jd.Parse(text, html)
	if err != nil {
		return jd.Sections{}, "", fmt.Errorf("parse job description %s: %w", filepath.Base(path), err)
	}
	return sections, fullText, nil
}

func isHTMLFile(path string) bool {
	switch filepath.Ext(path) {
	case ".html", ".htm":
		return true
	}
	return false
}
