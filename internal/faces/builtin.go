package faces

func init() {
	Register(Set{
		ID:    "emoji",
		Title: "Emoji",
		Symbols: []string{
			"🍎", "🍌", "🍒", "🍇", "🍉", "🍋", "🍑", "🍍", "🥝",
			"🐶", "🐱", "🐭", "🐰", "🦊", "🐻", "🐼", "🐨", "🐯",
			"⚽", "🏀", "🎲", "🎸", "🚀", "🌵", "🌙", "⭐", "🔥",
		},
	})

	Register(Set{
		ID:    "letters",
		Title: "Letters",
		Symbols: []string{
			"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L", "M",
			"N", "O", "P", "Q", "R", "S", "T", "U", "V", "W", "X", "Y", "Z",
		},
	})

	Register(Set{
		ID:    "symbols",
		Title: "Symbols",
		Symbols: []string{
			"♠", "♣", "♥", "♦", "★", "☀", "☂", "☯", "♪",
			"♫", "⚑", "⚓", "✈", "✿", "❄", "♞", "♜", "☘",
		},
	})
}
