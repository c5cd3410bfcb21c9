package markdown

import (
	"regexp"
	"strings"
)

// bibleBooks lists the 66 canonical book names recognized by the citation
// heuristic. Longer variants come before shorter prefixes of the same name so
// the alternation matches them first ("Psalms" before "Psalm").
var bibleBooks = []string{
	"Genesis", "Exodus", "Leviticus", "Numbers", "Deuteronomy",
	"Joshua", "Judges", "Ruth",
	"1 Samuel", "2 Samuel", "1 Kings", "2 Kings",
	"1 Chronicles", "2 Chronicles",
	"Ezra", "Nehemiah", "Esther", "Job",
	"Psalms", "Psalm", "Proverbs", "Ecclesiastes", "Song of Solomon",
	"Isaiah", "Jeremiah", "Lamentations", "Ezekiel", "Daniel",
	"Hosea", "Joel", "Amos", "Obadiah", "Jonah", "Micah",
	"Nahum", "Habakkuk", "Zephaniah", "Haggai", "Zechariah", "Malachi",
	"Matthew", "Mark", "Luke", "John", "Acts", "Romans",
	"1 Corinthians", "2 Corinthians", "Galatians", "Ephesians",
	"Philippians", "Colossians",
	"1 Thessalonians", "2 Thessalonians", "1 Timothy", "2 Timothy",
	"Titus", "Philemon", "Hebrews", "James",
	"1 Peter", "2 Peter", "1 John", "2 John", "3 John",
	"Jude", "Revelation",
}

// citationRe matches a line that opens with a book name followed by a
// chapter:verse reference, e.g. "John 3:16" or "1 Corinthians 13:4".
var citationRe = regexp.MustCompile(`(?i)^(` + strings.Join(bibleBooks, "|") + `)\s+\d+:\d+`)

func isCitationLine(line string) bool {
	return citationRe.MatchString(line)
}
