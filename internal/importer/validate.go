package importer

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/pavelanni/selftest/internal/model"
)

// schema checks exams against the struct tags of model.Exam and reports
// problems in English.
type schema struct {
	v     *govalidator.Validate
	trans ut.Translator
}

func newSchema() (*schema, error) {
	v := govalidator.New()
	// Use JSON tag name for field names in error messages.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(v, trans); err != nil {
		return nil, fmt.Errorf("register translations: %w", err)
	}
	return &schema{v: v, trans: trans}, nil
}

// check returns every problem found in exam. An empty result means the
// exam can be taken.
func (s *schema) check(exam model.Exam) []string {
	var problems []string
	if err := s.v.Struct(exam); err != nil {
		var ve govalidator.ValidationErrors
		if !errors.As(err, &ve) {
			return []string{err.Error()}
		}
		for _, fe := range ve {
			problems = append(problems, fieldPath(fe.Namespace())+": "+fe.Translate(s.trans))
		}
	}
	for i, q := range exam.Test {
		if msg := checkAnswerKey(q); msg != "" {
			problems = append(problems, fmt.Sprintf("test[%d]: %s", i, msg))
		}
	}
	return problems
}

// fieldPath drops the struct name from a validator namespace.
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func checkAnswerKey(q model.Question) string {
	correct := 0
	for _, c := range q.Choices {
		if c.Correct {
			correct++
		}
	}
	switch q.Type {
	case model.MultipleChoice:
		if correct != 1 && len(q.Choices) > 0 {
			return fmt.Sprintf("multiple-choice question needs exactly one correct choice, has %d", correct)
		}
	case model.MultipleAnswer:
		if correct == 0 && len(q.Choices) > 0 {
			return "multiple-answer question needs at least one correct choice"
		}
	case model.Ordering:
		if len(q.Choices) == 1 {
			return "ordering question needs at least two choices"
		}
	}
	return ""
}
