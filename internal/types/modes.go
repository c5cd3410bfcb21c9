package types

// Mode is one of the fixed conversation topics steering the completion service.
type Mode string

const (
	ModeScriptures  Mode = "scriptures"
	ModeConfessions Mode = "confessions"
	ModeQuestions   Mode = "questions"
	ModeProblems    Mode = "problems"
	ModeSermons     Mode = "sermons"
)

// DefaultMode is the mode selected when a session starts.
const DefaultMode = ModeScriptures

// ModeInfo describes a topic mode for presentation and prompt steering.
type ModeInfo struct {
	Mode        Mode     `json:"mode"`
	Label       string   `json:"label"`
	Icon        string   `json:"icon"`
	Description string   `json:"description"`
	Placeholder string   `json:"placeholder"`
	Examples    []string `json:"examples"`
}

var modeRegistry = []ModeInfo{
	{
		Mode:        ModeScriptures,
		Label:       "Scriptures",
		Icon:        "book-open",
		Description: "Find Bible verses for any topic or situation",
		Placeholder: "What would you like scriptures about?",
		Examples: []string{
			"Show me scriptures about faith",
			"Verses about overcoming fear",
			"What does the Bible say about forgiveness?",
		},
	},
	{
		Mode:        ModeConfessions,
		Label:       "Confessions",
		Icon:        "message-circle",
		Description: "Scripture-based confessions to declare over your life",
		Placeholder: "What area do you need confessions for?",
		Examples: []string{
			"Confessions for healing",
			"Declarations for my family",
			"Confessions about God's provision",
		},
	},
	{
		Mode:        ModeQuestions,
		Label:       "Bible Questions",
		Icon:        "help-circle",
		Description: "Ask questions about the Bible and Christian living",
		Placeholder: "Ask a question about the Bible...",
		Examples: []string{
			"Who was Melchizedek?",
			"What is the meaning of Pentecost?",
			"Why did Jesus speak in parables?",
		},
	},
	{
		Mode:        ModeProblems,
		Label:       "Life Situations",
		Icon:        "heart",
		Description: "Biblical guidance for life's challenges",
		Placeholder: "Share what you are going through...",
		Examples: []string{
			"I'm struggling with anxiety",
			"How do I handle conflict at work?",
			"I feel distant from God",
		},
	},
	{
		Mode:        ModeSermons,
		Label:       "Sermon Helper",
		Icon:        "mic",
		Description: "Outlines and scripture references for teaching",
		Placeholder: "What topic are you preparing?",
		Examples: []string{
			"Outline on the prodigal son",
			"Key verses on stewardship",
			"Sermon points about grace",
		},
	},
}

// Modes returns the fixed set of topic modes in display order.
func Modes() []ModeInfo {
	out := make([]ModeInfo, len(modeRegistry))
	copy(out, modeRegistry)
	return out
}

// ValidMode reports whether m is one of the known topic modes.
func ValidMode(m Mode) bool {
	for _, info := range modeRegistry {
		if info.Mode == m {
			return true
		}
	}
	return false
}
