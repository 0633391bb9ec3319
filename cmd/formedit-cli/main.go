// Command formedit-cli walks a form document interactively: it flattens the
// field list, splits it into pages at page breaks, prompts for each visible
// input, and re-evaluates conditional visibility after every answer. The
// collected values print as JSON. With -schema it prints the submission
// JSON Schema instead of prompting.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/AlecAivazis/survey/v2"

	"github.com/goliatone/go-formedit/pkg/document"
	"github.com/goliatone/go-formedit/pkg/logic"
	"github.com/goliatone/go-formedit/pkg/schema"
	"github.com/goliatone/go-formedit/pkg/store"
)

func main() {
	var (
		formFlag   = flag.String("form", "", "Path to a form document JSON file")
		storeFlag  = flag.String("store", "", "Path to a sqlite form store")
		idFlag     = flag.String("id", "", "Document id to load from the store")
		schemaFlag = flag.Bool("schema", false, "Print the submission JSON Schema and exit")
	)
	flag.Parse()

	form, err := loadForm(*formFlag, *storeFlag, *idFlag)
	if err != nil {
		log.Fatalf("load form: %v", err)
	}

	if *schemaFlag {
		data, err := json.MarshalIndent(schema.ForForm(form), "", "  ")
		if err != nil {
			log.Fatalf("encode schema: %v", err)
		}
		fmt.Println(string(data))
		return
	}

	values, err := walk(form)
	if err != nil {
		log.Fatalf("walk form: %v", err)
	}

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		log.Fatalf("encode answers: %v", err)
	}
	fmt.Println(string(data))
}

func loadForm(path, storePath, id string) (document.Form, error) {
	switch {
	case path != "":
		data, err := os.ReadFile(path)
		if err != nil {
			return document.Form{}, err
		}
		var form document.Form
		if err := json.Unmarshal(data, &form); err != nil {
			return document.Form{}, fmt.Errorf("decode %q: %w", path, err)
		}
		return form, nil
	case storePath != "" && id != "":
		st, err := store.Open(storePath)
		if err != nil {
			return document.Form{}, err
		}
		defer st.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return st.Load(ctx, id)
	default:
		return document.Form{}, fmt.Errorf("pass -form, or -store together with -id")
	}
}

func walk(form document.Form) (map[string]any, error) {
	values := make(map[string]any)
	parents := make(map[string]string, len(form.Fields))
	for _, field := range form.Fields {
		if field.GroupID != "" {
			parents[field.ID] = field.GroupID
		}
	}

	pages := document.SplitIntoPages(document.Flatten(form.Fields))
	for pageIdx, page := range pages {
		if len(pages) > 1 {
			title := fmt.Sprintf("Page %d of %d", pageIdx+1, len(pages))
			if pageIdx < len(form.Pages) && form.Pages[pageIdx].Title != "" {
				title = form.Pages[pageIdx].Title
			}
			fmt.Printf("\n== %s ==\n", title)
		}
		for _, field := range page {
			hidden := logic.HiddenWithDescendants(logic.Evaluate(form.Rules, values), parents)
			if hidden[field.ID] {
				continue
			}
			if err := prompt(field, values); err != nil {
				return nil, err
			}
		}
	}
	return values, nil
}

func prompt(field document.Field, values map[string]any) error {
	message := field.Label
	if message == "" {
		message = string(field.Type)
	}

	switch field.Type {
	case document.FieldTypeHeading:
		fmt.Printf("\n%s\n", message)
		return nil
	case document.FieldTypeParagraph:
		if content, ok := field.Options["content"].(string); ok && content != "" {
			fmt.Println(content)
		}
		return nil
	case document.FieldTypeDivider, document.FieldTypeGroup,
		document.FieldTypeSubmit, document.FieldTypePageBreak:
		return nil
	case document.FieldTypeLongText:
		var answer string
		if err := ask(&survey.Multiline{Message: message}, &answer, field.Required); err != nil {
			return err
		}
		values[field.ID] = answer
	case document.FieldTypeNumber:
		var raw string
		q := &survey.Input{Message: message, Default: ""}
		opts := []survey.AskOpt{survey.WithValidator(numberValidator(field.Required))}
		if err := survey.AskOne(q, &raw, opts...); err != nil {
			return err
		}
		if raw != "" {
			parsed, _ := strconv.ParseFloat(raw, 64)
			values[field.ID] = parsed
		}
	case document.FieldTypeChoiceSingle:
		choices := stringChoices(field)
		if len(choices) == 0 {
			return nil
		}
		var answer string
		if err := ask(&survey.Select{Message: message, Options: choices}, &answer, field.Required); err != nil {
			return err
		}
		values[field.ID] = answer
	case document.FieldTypeChoiceMulti:
		choices := stringChoices(field)
		if len(choices) == 0 {
			return nil
		}
		var answers []string
		if err := ask(&survey.MultiSelect{Message: message, Options: choices}, &answers, field.Required); err != nil {
			return err
		}
		values[field.ID] = answers
	case document.FieldTypeRating:
		max := 5
		if v, ok := field.Options["max"].(float64); ok && v >= 1 {
			max = int(v)
		}
		choices := make([]string, 0, max)
		for i := 1; i <= max; i++ {
			choices = append(choices, strconv.Itoa(i))
		}
		var answer string
		if err := ask(&survey.Select{Message: message, Options: choices}, &answer, field.Required); err != nil {
			return err
		}
		parsed, _ := strconv.Atoi(answer)
		values[field.ID] = parsed
	default:
		var answer string
		input := &survey.Input{Message: message}
		if field.Placeholder != "" {
			input.Help = field.Placeholder
		}
		if err := ask(input, &answer, field.Required); err != nil {
			return err
		}
		values[field.ID] = answer
	}
	return nil
}

func ask(q survey.Prompt, answer any, required bool) error {
	var opts []survey.AskOpt
	if required {
		opts = append(opts, survey.WithValidator(survey.Required))
	}
	return survey.AskOne(q, answer, opts...)
}

func numberValidator(required bool) survey.Validator {
	return func(ans any) error {
		raw, _ := ans.(string)
		if raw == "" {
			if required {
				return fmt.Errorf("a value is required")
			}
			return nil
		}
		if _, err := strconv.ParseFloat(raw, 64); err != nil {
			return fmt.Errorf("%q is not a number", raw)
		}
		return nil
	}
}

func stringChoices(field document.Field) []string {
	switch raw := field.Options["choices"].(type) {
	case []string:
		return raw
	case []any:
		out := make([]string, 0, len(raw))
		for _, choice := range raw {
			if s, ok := choice.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
