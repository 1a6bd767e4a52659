package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/medsum/medsum/relay"
)

// explainOutput is the --json shape.
type explainOutput struct {
	Diagnosis        string `json:"diagnosis"`
	Medicines        string `json:"medicines"`
	Explanation      string `json:"explanation"`
	Model            string `json:"model,omitempty"`
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
	ElapsedMS        int64  `json:"elapsed_ms"`
}

// runExplain sends one diagnosis and its medicines to the model and prints
// the explanation.
func runExplain(g globals, args []string) int {
	fs := flag.NewFlagSet("explain", flag.ContinueOnError)

	var (
		diagnosis string
		medicines string
		jsonFlag  bool
		dryRun    bool
	)

	fs.StringVar(&diagnosis, "diagnosis", "", "the diagnosis, e.g. Hypertension")
	fs.StringVar(&medicines, "medicines", "", "prescribed medicines, e.g. \"Metformin, Lisinopril\"")
	fs.BoolVar(&jsonFlag, "json", false, "output as JSON")
	fs.BoolVar(&dryRun, "dry-run", false, "print the prompt without calling the model")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, logger, err := g.setup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	req := relay.Request{Diagnosis: diagnosis, Medicines: medicines}
	if err := req.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %s\n", relay.MissingFieldsWarning)
		return 1
	}

	if dryRun {
		tmpl, err := cfg.PromptTemplate()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 2
		}
		prompt, err := relay.New(nil, relay.WithTemplate(tmpl)).Prompt(req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 2
		}
		fmt.Print(prompt)
		return 0
	}

	r, err := cfg.NewRelay(logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	res, err := r.Explain(context.Background(), req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	if jsonFlag {
		data, err := json.MarshalIndent(explainOutput{
			Diagnosis:        req.Diagnosis,
			Medicines:        req.Medicines,
			Explanation:      res.Content,
			Model:            res.Model,
			PromptTokens:     res.PromptTokens,
			CompletionTokens: res.CompletionTokens,
			ElapsedMS:        res.Elapsed.Milliseconds(),
		}, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: marshalling JSON: %v\n", err)
			return 2
		}
		fmt.Println(string(data))
		return 0
	}

	fmt.Println("Explanation:")
	fmt.Println(res.Content)
	if g.verbose {
		fmt.Fprintf(os.Stderr, "[explain] %s answered in %s (%s prompt + %s completion tokens)\n",
			res.Model,
			res.Elapsed.Round(time.Millisecond),
			humanize.Comma(int64(res.PromptTokens)),
			humanize.Comma(int64(res.CompletionTokens)),
		)
	}
	return 0
}
