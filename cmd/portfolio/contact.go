package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-portfolio/internal/contact"
)

var fieldLabels = map[contact.Field]string{
	contact.FieldName:    "Имя",
	contact.FieldEmail:   "Email",
	contact.FieldMessage: "Сообщение",
}

// createContactCommand создает команду contact с привязкой к экземпляру приложения
func (app *Application) createContactCommand(ctx context.Context) *cobra.Command {
	var form contact.Form

	cmd := &cobra.Command{
		Use:   "contact",
		Short: "Send a message through the contact form",
		Long:  `Send a message to the portfolio owner. Fields not given as flags are asked for interactively.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.sendContact(ctx, cmd.InOrStdin(), form)
		},
	}
	cmd.Flags().StringVarP(&form.Name, "name", "n", "", "your name")
	cmd.Flags().StringVarP(&form.Email, "email", "e", "", "your email")
	cmd.Flags().StringVarP(&form.Message, "message", "m", "", "message text")

	return cmd
}

func (app *Application) sendContact(ctx context.Context, in io.Reader, form contact.Form) error {
	reader := bufio.NewReader(in)

	// Спрашиваем поля, не заданные флагами
	for _, field := range contact.Fields {
		if strings.TrimSpace(form.Get(field)) != "" {
			continue
		}
		fmt.Printf("%s: ", fieldLabels[field])
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("ошибка чтения ввода: %w", err)
		}
		form.Set(field, strings.TrimSpace(line))
	}
	fmt.Println()

	errs := app.Submitter.Submit(ctx, form)
	if !errs.Ok() {
		fmt.Println("❌ Сообщение не отправлено:")
		for _, field := range contact.Fields {
			if msg, ok := errs[field]; ok {
				fmt.Printf("   %s: %s\n", fieldLabels[field], msg)
			}
		}
		return errs
	}

	fmt.Println("✅ Сообщение отправлено! Спасибо.")
	return nil
}
