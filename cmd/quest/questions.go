package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/quest/internal/config"
	"github.com/vovakirdan/quest/internal/survey"
)

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "Print the questionnaire",
	Long: `Prints the questions the survey will ask, in order, after loading
--questions (or ~/.quest/configs/questions.yaml, ./configs/questions.yaml,
or the built-in questionnaire).

Examples:
  quest questions
  quest questions --questions ./team.yaml`,
	Args: cobra.NoArgs,
	Run:  runQuestions,
}

func runQuestions(_ *cobra.Command, _ []string) {
	questions, err := config.LoadQuestions(flagQuestions)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	section := ""
	for i, q := range questions {
		if q.Section != section {
			section = q.Section
			if i > 0 {
				fmt.Println()
			}
			fmt.Println(section)
		}

		kind := "text"
		if q.Kind == survey.KindScale {
			kind = fmt.Sprintf("%d-%d", q.Min, q.Max)
		}
		fmt.Printf("  %2d. %s [%s]\n", i+1, q.Text, kind)
	}

	fmt.Println()
	fmt.Printf("%d questions\n", len(questions))
}
