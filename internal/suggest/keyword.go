package suggest

import (
	"context"
	"slices"
	"strings"

	"learnmap/internal/domain/skill"
)

type topic struct {
	key         string
	suggestions []SkillSuggestion
}

// topics is matched in this order; the order of Items follows it.
var topics = []topic{
	{"web development", []SkillSuggestion{
		{"HTML & CSS", "Frontend", "Learn the fundamentals of web markup and styling"},
		{"JavaScript", "Frontend", "Master the programming language of the web"},
		{"React", "Frontend Framework", "Build modern user interfaces with React"},
		{"Node.js", "Backend", "Create server-side applications with JavaScript"},
	}},
	{"data science", []SkillSuggestion{
		{"Python", "Programming", "Learn Python for data analysis and machine learning"},
		{"Pandas", "Data Analysis", "Master data manipulation and analysis with Pandas"},
		{"NumPy", "Data Analysis", "Learn numerical computing with NumPy"},
		{"Scikit-learn", "Machine Learning", "Build machine learning models with scikit-learn"},
	}},
	{"mobile development", []SkillSuggestion{
		{"Swift", "iOS Development", "Learn iOS app development with Swift"},
		{"Kotlin", "Android Development", "Build Android apps with Kotlin"},
		{"React Native", "Cross-platform", "Create mobile apps for iOS and Android with React Native"},
		{"Flutter", "Cross-platform", "Build beautiful native apps with Flutter"},
	}},
	{"cloud computing", []SkillSuggestion{
		{"AWS", "Cloud Platform", "Learn Amazon Web Services cloud platform"},
		{"Docker", "Containerization", "Master containerization with Docker"},
		{"Kubernetes", "Container Orchestration", "Learn container orchestration with Kubernetes"},
		{"Terraform", "Infrastructure as Code", "Manage infrastructure as code with Terraform"},
	}},
}

var fallback = []SkillSuggestion{
	{"Problem Solving", "Core Skills", "Develop strong problem-solving abilities"},
	{"Communication", "Soft Skills", "Improve your communication skills"},
	{"Time Management", "Productivity", "Learn effective time management techniques"},
}

// Keyword matches goals against a fixed topic table. It needs no
// configuration and is always available.
type Keyword struct{}

func (Keyword) Name() string { return "keyword" }

// Skills appends the suggestions of every topic whose key occurs in the
// lower-cased goal. Overlapping topics keep their duplicates.
func (Keyword) Skills(_ context.Context, goal string, _ []string) Result[SkillSuggestion] {
	g := strings.ToLower(goal)

	items := []SkillSuggestion{}
	for _, t := range topics {
		if strings.Contains(g, t.key) {
			items = append(items, t.suggestions...)
		}
	}
	if len(items) == 0 {
		return Result[SkillSuggestion]{Items: slices.Clone(fallback), Outcome: OutcomeFallback}
	}
	return Result[SkillSuggestion]{Items: items, Outcome: OutcomeMatched}
}

// Resources has no table to draw from.
func (Keyword) Resources(_ context.Context, _ skill.Skill) Result[ResourceSuggestion] {
	return emptyResult[ResourceSuggestion]("keyword strategy has no resource table")
}

// Topics lists the goal phrases the keyword table understands.
func Topics() []string {
	out := make([]string, len(topics))
	for i, t := range topics {
		out[i] = t.key
	}
	return out
}
