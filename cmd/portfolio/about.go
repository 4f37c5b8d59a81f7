package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// createAboutCommand создает команду about с привязкой к экземпляру приложения
func (app *Application) createAboutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "about",
		Short: "Show information about the portfolio owner",
		Long:  `Print the owner's summary, technologies grouped by category and social links.`,
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			app.showAbout()
		},
	}
}

func (app *Application) showAbout() {
	content := app.Content

	fmt.Printf("👋 %s\n", content.Owner)
	fmt.Printf("💼 %s\n\n", content.Role)
	fmt.Println(content.Summary)
	if content.About != "" {
		fmt.Println()
		fmt.Println(content.About)
	}

	groups := content.GroupTechnologies()
	if len(groups) > 0 {
		fmt.Printf("\n🛠️  Технологии:\n")
		for _, g := range groups {
			fmt.Printf("\n   %s\n", g.Category.Label())
			for _, tech := range g.Technologies {
				fmt.Printf("   %-24s %s %s\n", tech.Name, tech.Proficiency.Bar(), tech.Proficiency)
			}
		}
	}

	if len(content.Social) > 0 {
		fmt.Printf("\n🌐 Я в сети:\n")
		for _, link := range content.Social {
			fmt.Printf("   %-10s @%-16s %s\n", link.Platform, link.Username, link.URL)
		}
	}
}
