package career

import "fmt"

// Fallback returns the canned recommendations used when nothing usable comes out of the model.
func Fallback(budget float64) []Recommendation {
	return []Recommendation{
		{
			Career:      "Software Developer",
			Description: "Designs and builds computer applications and systems. Responsible for coding, testing, and maintaining software that meets user needs.",
			SkillMatch:  "Utilizes programming and problem-solving skills to create efficient solutions to technical challenges.",
			BudgetFit:   budgetSentence(budget, "A $%s budget is sufficient for online courses and certifications to enter this field.", "Free online courses and open-source projects are enough to enter this field."),
		},
		{
			Career:      "Data Analyst",
			Description: "Interprets data to help organizations make informed decisions. Collects, processes, and performs statistical analyses on large datasets.",
			SkillMatch:  "Leverages problem-solving abilities to extract meaningful insights from complex information.",
			BudgetFit:   budgetSentence(budget, "The $%s budget allows for specialized data analysis courses and essential tool certifications.", "Free data analysis courses and public datasets are enough to build a portfolio."),
		},
		{
			Career:      "Digital Marketer",
			Description: "Develops and implements online marketing strategies to promote products and services. Manages social media, content creation, and digital advertising campaigns.",
			SkillMatch:  "Applies technological understanding and innovative thinking to reach target audiences effectively.",
			BudgetFit:   budgetSentence(budget, "The available $%s budget can cover digital marketing certifications and specialized courses.", "Free vendor certifications in digital marketing are enough to get started."),
		},
	}
}

func budgetSentence(budget float64, withBudget, withoutBudget string) string {
	if budget <= 0 {
		return withoutBudget
	}
	return fmt.Sprintf(withBudget, FormatBudget(budget))
}
