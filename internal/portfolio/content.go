// Package portfolio содержит контент страниц портфолио
package portfolio

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Category категория технологии
type Category string

// Категории технологий в порядке отображения
const (
	CategoryBackend  Category = "backend"
	CategoryFrontend Category = "frontend"
	CategoryDevOps   Category = "devops"
	CategoryDatabase Category = "database"
)

var categoryOrder = []Category{CategoryBackend, CategoryFrontend, CategoryDevOps, CategoryDatabase}

// Label возвращает название категории для отображения
func (c Category) Label() string {
	switch c {
	case CategoryBackend:
		return "Backend"
	case CategoryFrontend:
		return "Frontend"
	case CategoryDevOps:
		return "DevOps"
	case CategoryDatabase:
		return "Базы данных"
	}
	return string(c)
}

// Proficiency уровень владения технологией
type Proficiency string

// Уровни владения
const (
	Beginner     Proficiency = "beginner"
	Intermediate Proficiency = "intermediate"
	Advanced     Proficiency = "advanced"
	Expert       Proficiency = "expert"
)

// Level возвращает уровень от 1 до 4, 0 для неизвестного значения
func (p Proficiency) Level() int {
	switch p {
	case Beginner:
		return 1
	case Intermediate:
		return 2
	case Advanced:
		return 3
	case Expert:
		return 4
	}
	return 0
}

// Bar рисует уровень владения четырьмя делениями
func (p Proficiency) Bar() string {
	level := p.Level()
	return strings.Repeat("■", level) + strings.Repeat("□", 4-level)
}

// Technology технология из раздела «Обо мне»
type Technology struct {
	Name        string      `yaml:"name" json:"name"`
	Category    Category    `yaml:"category" json:"category"`
	Proficiency Proficiency `yaml:"proficiency" json:"proficiency"`
}

// Link ссылка на профиль в соцсети
type Link struct {
	Platform string `yaml:"platform" json:"platform"`
	URL      string `yaml:"url" json:"url"`
	Username string `yaml:"username" json:"username"`
}

// Content содержимое портфолио
type Content struct {
	Owner        string       `yaml:"owner" json:"owner"`
	Role         string       `yaml:"role" json:"role"`
	Summary      string       `yaml:"summary" json:"summary"`
	About        string       `yaml:"about" json:"about"`
	Technologies []Technology `yaml:"technologies" json:"technologies"`
	Social       []Link       `yaml:"social" json:"social"`
}

// TechnologyGroup технологии одной категории
type TechnologyGroup struct {
	Category     Category
	Technologies []Technology
}

// GroupTechnologies группирует технологии по категориям.
// Известные категории идут в фиксированном порядке, остальные по алфавиту.
func (c Content) GroupTechnologies() []TechnologyGroup {
	byCategory := make(map[Category][]Technology)
	for _, tech := range c.Technologies {
		byCategory[tech.Category] = append(byCategory[tech.Category], tech)
	}

	groups := make([]TechnologyGroup, 0, len(byCategory))
	for _, cat := range categoryOrder {
		if techs, ok := byCategory[cat]; ok {
			groups = append(groups, TechnologyGroup{Category: cat, Technologies: techs})
			delete(byCategory, cat)
		}
	}

	rest := make([]Category, 0, len(byCategory))
	for cat := range byCategory {
		rest = append(rest, cat)
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })
	for _, cat := range rest {
		groups = append(groups, TechnologyGroup{Category: cat, Technologies: byCategory[cat]})
	}

	return groups
}

// Default возвращает встроенный контент
func Default() Content {
	return Content{
		Owner:   "Marcos Anton",
		Role:    "Backend Developer",
		Summary: "Привет! Я Marcos Anton, backend-разработчик. Всегда готов изучать новое, будь то методологии или технологии.",
		About: "Как backend-разработчик, я создаю надёжные и масштабируемые решения: от разработки API " +
			"до микросервисных архитектур. Помимо технологий я очень люблю музыку, она вдохновляет " +
			"и помогает сохранять творческий подход в проектах.",
		Technologies: []Technology{
			{Name: "Java (Spring Boot)", Category: CategoryBackend, Proficiency: Advanced},
			{Name: "Node.JS (Nestjs)", Category: CategoryBackend, Proficiency: Advanced},
			{Name: "Node.JS (Express)", Category: CategoryBackend, Proficiency: Advanced},
			{Name: ".NET (ASP.NET)", Category: CategoryBackend, Proficiency: Intermediate},
			{Name: "Docker", Category: CategoryDevOps, Proficiency: Advanced},
			{Name: "Kubernetes", Category: CategoryDevOps, Proficiency: Intermediate},
			{Name: "SQL", Category: CategoryDatabase, Proficiency: Advanced},
		},
	}
}

// Load загружает контент из YAML файла. Если файл не существует,
// возвращается Default().
func Load(path string) (Content, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Content{}, fmt.Errorf("ошибка чтения файла контента: %w", err)
	}

	content := Default()
	if err := yaml.Unmarshal(data, &content); err != nil {
		return Content{}, fmt.Errorf("ошибка парсинга YAML: %w", err)
	}

	return content, nil
}
