package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"recletter/generator"
)

var (
	subjectText  string
	subjectFile  string
	materialText string
	materialFile string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a letter once and print all three fields",
	Long: `Generate a recommendation letter from recommender info and source material.

Example:
  recletter generate --subject "Dr. Lin, CS Dept" --material-file notes.txt`,
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := readGenerationInput()
		if err != nil {
			return err
		}
		orch, err := buildOrchestrator(cfg)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout())
		defer cancel()
		doc, err := orch.Generate(ctx, in)
		if err != nil {
			return err
		}
		printDocument(cmd.OutOrStdout(), doc)
		return nil
	},
}

func readGenerationInput() (generator.GenerationInput, error) {
	subject, err := textOrFile(subjectText, subjectFile)
	if err != nil {
		return generator.GenerationInput{}, err
	}
	material, err := textOrFile(materialText, materialFile)
	if err != nil {
		return generator.GenerationInput{}, err
	}
	return generator.GenerationInput{SubjectContext: subject, SourceMaterial: material}, nil
}

func textOrFile(text, path string) (string, error) {
	if path == "" {
		return text, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

func printDocument(w io.Writer, doc generator.Document) {
	fmt.Fprintf(w, "== Logic Draft ==\n%s\n\n", doc.LogicDraft)
	fmt.Fprintf(w, "== Letter ==\n%s\n\n", doc.PrimaryText)
	fmt.Fprintf(w, "== Critique ==\n%s\n", doc.Critique)
}

func addInputFlags(c *cobra.Command) {
	c.Flags().StringVar(&subjectText, "subject", "", "Recommender info (name, title, department)")
	c.Flags().StringVar(&subjectFile, "subject-file", "", "Read recommender info from file")
	c.Flags().StringVar(&materialText, "material", "", "Source material about the student")
	c.Flags().StringVar(&materialFile, "material-file", "", "Read source material from file")
	c.MarkFlagsMutuallyExclusive("subject", "subject-file")
	c.MarkFlagsMutuallyExclusive("material", "material-file")
}

func init() {
	rootCmd.AddCommand(generateCmd)
	addInputFlags(generateCmd)
}

