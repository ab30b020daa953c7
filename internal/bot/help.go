package bot

import "strings"

// Help lists the available commands. The movie line is omitted when movie
// recommendations are disabled.
func (h *Handlers) Help() string {
	var b strings.Builder
	b.WriteString("## 🤖 Weather & Movie Bot Commands\n")
	b.WriteString("Here are all the available commands:\n\n")
	b.WriteString("**/meme** - Get a random meme\n")
	b.WriteString("**/quote** - Get an inspirational quote\n")
	b.WriteString("**/weather [location]** - Get weather information (save with `save=True`)\n")
	b.WriteString("**/setlocation [location]** - Set your default weather location\n")
	b.WriteString("**/mylocation** - Show your saved weather location\n")
	if h.MoviesEnabled() {
		b.WriteString("**/movie [mood]** - Get movie recommendation based on mood\n")
	}
	b.WriteString("**/help** - Show this help message\n")

	if h.MoviesEnabled() {
		b.WriteString("\n**Movie Mood Options**\n")
		b.WriteString("😄 Happy: Comedy/Musical\n")
		b.WriteString("😢 Sad: Drama/Family\n")
		b.WriteString("🤩 Excited: Action/Adventure\n")
		b.WriteString("😨 Scared: Horror\n")
		b.WriteString("🤔 Thoughtful: Mystery/Drama\n")
		b.WriteString("🎲 Random: Any popular movie\n")
	}

	b.WriteString("\n**Weather Features**\n")
	b.WriteString("• Save locations with `/setlocation`\n")
	b.WriteString("• Get weather with just `/weather` after setting location\n")
	b.WriteString("• Detailed weather reports with emojis")
	return b.String()
}
