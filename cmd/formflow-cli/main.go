// Command formflow-cli works with form definitions from the terminal:
//
//	formflow-cli generate [-db formflow.db -owner you@example.com]
//	                                      describe a form, get its definition JSON,
//	                                      optionally store it and print the share link
//	formflow-cli import api.yaml Schema   build a definition from an OpenAPI schema
//	formflow-cli preview def.json         render a definition to HTML
//	formflow-cli fill def.json            fill a definition interactively
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/bytedance/sonic"

	"github.com/goliatone/go-formflow/internal/generate"
	"github.com/goliatone/go-formflow/internal/store"
	"github.com/goliatone/go-formflow/pkg/importer/openapi"
	"github.com/goliatone/go-formflow/pkg/render"
	"github.com/goliatone/go-formflow/pkg/renderers/vanilla"
	"github.com/goliatone/go-formflow/pkg/schema"
)

func main() {
	flag.Parse()
	if err := run(flag.Args()); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, "usage: formflow-cli <generate|import|preview|fill> [arguments]")
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "formflow-cli:", err)
		os.Exit(1)
	}
}

var errUsage = errors.New("usage")

func run(args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "generate":
		return runGenerate(args[1:])
	case "import":
		if len(args) < 3 {
			return errUsage
		}
		return runImport(args[1], args[2])
	case "preview":
		if len(args) < 2 {
			return errUsage
		}
		return runPreview(args[1])
	case "fill":
		if len(args) < 2 {
			return errUsage
		}
		return runFill(args[1])
	default:
		return errUsage
	}
}

func runGenerate(args []string) error {
	flags := flag.NewFlagSet("generate", flag.ContinueOnError)
	dbPath := flags.String("db", "", "store the generated form in this SQLite database")
	owner := flags.String("owner", "", "email recorded as the form owner (required with -db)")
	baseURL := flags.String("base-url", "http://localhost:8080", "base URL for the printed share link")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *dbPath != "" && *owner == "" {
		return errors.New("-owner is required when storing with -db")
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return errors.New("GEMINI_API_KEY must be set")
	}

	var description string
	prompt := &survey.Multiline{
		Message: "Describe the form you need:",
		Help:    "Plain language. Mention the fields you want and whether they are required.",
	}
	if err := survey.AskOne(prompt, &description, survey.WithValidator(survey.Required)); err != nil {
		return err
	}

	ctx := context.Background()
	completer, err := generate.NewGemini(ctx, apiKey, os.Getenv("FORMFLOW_MODEL"))
	if err != nil {
		return err
	}

	def, err := generate.New(completer).Generate(ctx, description)
	if err != nil {
		return err
	}

	encoded, err := sonic.MarshalIndent(def, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))

	if *dbPath == "" {
		return nil
	}
	st, err := store.Open(*dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	definition, err := def.Encode()
	if err != nil {
		return err
	}
	id, err := st.InsertForm(ctx, store.FormRecord{
		Definition: string(definition),
		CreatedBy:  *owner,
		CreatedAt:  store.DisplayDate(time.Now()),
	})
	if err != nil {
		return err
	}
	fmt.Printf("stored as form %d\nshare link: %s/aiform/%d\n", id, strings.TrimRight(*baseURL, "/"), id)
	return nil
}

func runImport(path, schemaName string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	def, err := openapi.New(openapi.Options{}).Import(context.Background(), data, schemaName)
	if err != nil {
		return err
	}
	encoded, err := sonic.MarshalIndent(def, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))
	return nil
}

func loadDefinition(path string) (schema.FormDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return schema.FormDefinition{}, err
	}
	return schema.ParseDefinition(data)
}

func runPreview(path string) error {
	def, err := loadDefinition(path)
	if err != nil {
		return err
	}
	markup, err := vanilla.New().Render(context.Background(), def, render.Options{})
	if err != nil {
		return err
	}
	fmt.Println(string(markup))
	return nil
}

func runFill(path string) error {
	def, err := loadDefinition(path)
	if err != nil {
		return err
	}

	fmt.Printf("%s\n%s\n\n", def.FormTitle, def.FormHeading)

	answers := schema.NewAnswerSet()
	for index, field := range def.Fields {
		if err := askField(field, index, answers); err != nil {
			return err
		}
	}

	encoded, err := answers.Encode()
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))
	return nil
}

func askField(field schema.FieldDefinition, index int, answers *schema.AnswerSet) error {
	name := field.Name(index)
	message := field.Label
	if message == "" {
		message = field.FieldTitle
	}

	var opts []survey.AskOpt
	if field.Required {
		opts = append(opts, survey.WithValidator(survey.Required))
	}

	switch kind := field.Kind(); {
	case kind == schema.KindSelect && len(field.Options) > 0, kind == schema.KindRadio && len(field.Options) > 0:
		choices := make([]string, len(field.Options))
		for i, option := range field.Options {
			choices[i] = option.Label
		}
		var picked string
		if err := survey.AskOne(&survey.Select{Message: message, Options: choices}, &picked, opts...); err != nil {
			return err
		}
		answers.Set(name, valueForLabel(field.Options, picked))
	case kind == schema.KindCheckbox && len(field.Options) > 0:
		choices := make([]string, len(field.Options))
		for i, option := range field.Options {
			choices[i] = option.Label
		}
		var picked []string
		if err := survey.AskOne(&survey.MultiSelect{Message: message, Options: choices}, &picked, opts...); err != nil {
			return err
		}
		for _, label := range picked {
			answers.Toggle(name, label, true)
		}
	case kind == schema.KindCheckbox:
		var checked bool
		if err := survey.AskOne(&survey.Confirm{Message: message}, &checked); err != nil {
			return err
		}
		if checked {
			answers.Toggle(name, "", true)
		}
	case kind == schema.KindTextarea:
		var out string
		if err := survey.AskOne(&survey.Multiline{Message: message}, &out, opts...); err != nil {
			return err
		}
		answers.Set(name, out)
	default:
		var out string
		input := &survey.Input{Message: message, Help: field.Placeholder}
		if err := survey.AskOne(input, &out, opts...); err != nil {
			return err
		}
		answers.Set(name, strings.TrimSpace(out))
	}
	return nil
}

func valueForLabel(options []schema.Option, label string) string {
	for _, option := range options {
		if option.Label == label {
			return option.Value
		}
	}
	return label
}
