package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/divya16-bit/ApplyBee/internal/gist"
	"github.com/divya16-bit/ApplyBee/internal/resumetext"
)

const (
	PromptAccept     = "Accept"
	PromptEdit       = "Edit"
	PromptClear      = "Clear"
	PromptAcceptRest = "Accept all remaining"
)

type gistReport struct {
	Answers  map[string]string      `json:"answers"`
	Sources  map[string]gist.Source `json:"sources"`
	Warnings []string               `json:"warnings,omitempty"`
}

var gistCmd = &cobra.Command{
	Use:   "gist",
	Short: "Draft answers for job application form labels",
	Run: func(cmd *cobra.Command, _ []string) {
		runGist(cmd)
	},
}

func init() {
	rootCmd.AddCommand(gistCmd)

	gistCmd.Flags().StringP("resume", "r", "", "resume file (.pdf, .docx or .txt)")
	gistCmd.Flags().String("jd", "", "job description file")
	gistCmd.Flags().StringArrayP("label", "l", nil, "form label to answer, may be repeated")
	gistCmd.Flags().Bool("review", false, "review every answer interactively before printing")

	_ = gistCmd.MarkFlagRequired("resume")
	_ = gistCmd.MarkFlagRequired("label")
}

func runGist(cmd *cobra.Command) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger, _, deps := setup(ctx)
	defer deps.Close()

	resumePath, _ := cmd.Flags().GetString("resume")
	jdPath, _ := cmd.Flags().GetString("jd")
	labels, _ := cmd.Flags().GetStringArray("label")
	review, _ := cmd.Flags().GetBool("review")

	resume, err := readResume(resumePath)
	if err != nil {
		logger.Fatal("reading resume", zap.Error(err))
	}

	var jdText string
	if jdPath != "" {
		_, fullText, err := readJobDescription(jdPath, false)
		if err != nil {
			logger.Fatal("reading job description", zap.Error(err))
		}
		jdText = fullText
	}

	out := deps.answerer.Answer(ctx, gist.Request{
		Resume: resumetext.ParseFields(resume),
		JDText: jdText,
		Labels: labels,
	})

	if review {
		if err := reviewAnswers(promptReviewer{}, labels, out); err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				logger.Info("exiting", zap.String("reason", "review interrupted"))
				os.Exit(1)
			}
			logger.Fatal("reviewing answers", zap.Error(err))
		}
	}

	report := gistReport{Answers: out.Answers, Sources: out.Sources, Warnings: out.Warnings}
	if err := writeJSON(cmd.OutOrStdout(), report); err != nil {
		logger.Fatal("writing answers", zap.Error(err))
	}
}

// reviewer asks the user what to do with one answer.
type reviewer interface {
	Choose(label, answer string, source gist.Source) (string, error)
	Edit(label, answer string) (string, error)
}

type promptReviewer struct{}

func (promptReviewer) Choose(label, answer string, source gist.Source) (string, error) {
	shown := answer
	if shown == "" {
		shown = "(empty)"
	}
	p := promptui.Select{
		Label: fmt.Sprintf("%s [%s]: %s", label, source, shown),
		Items: []string{PromptAccept, PromptEdit, PromptClear, PromptAcceptRest},
	}
	_, choice, err := p.Run()
	return choice, err
}

func (promptReviewer) Edit(label, answer string) (string, error) {
	p := promptui.Prompt{
		Label:     label,
		Default:   answer,
		AllowEdit: true,
	}
	return p.Run()
}

// reviewAnswers walks the labels in request order and applies the user's
// decisions to out. Edited and cleared answers are marked as manual.
func reviewAnswers(r reviewer, labels []string, out gist.Outcome) error {
	seen := make(map[string]struct{}, len(labels))
	for _, label := range labels {
		if _, dup := seen[label]; dup {
			continue
		}
		seen[label] = struct{}{}

		choice, err := r.Choose(label, out.Answers[label], out.Sources[label])
		if err != nil {
			return fmt.Errorf("review %q: %w", label, err)
		}

		switch choice {
		case PromptAccept:
		case PromptAcceptRest:
			return nil
		case PromptClear:
			out.Answers[label] = ""
			out.Sources[label] = sourceManual
		case PromptEdit:
			edited, err := r.Edit(label, out.Answers[label])
			if err != nil {
				return fmt.Errorf("edit %q: %w", label, err)
			}
			out.Answers[label] = strings.TrimSpace(edited)
			out.Sources[label] = sourceManual
		default:
			return fmt.Errorf("invalid action: %s", choice)
		}
	}
	return nil
}

const sourceManual gist.Source = "manual"
