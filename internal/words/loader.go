// internal/words/loader.go
package words

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jason-s-yu/sketch/internal/models"
)

// LoadDir reads <dir>/<difficulty>_words.txt for every tier, one word per line.
// Blank lines are skipped. A missing or empty file is an error.
func LoadDir(dir string) (map[models.Difficulty][]string, error) {
	lists := make(map[models.Difficulty][]string, len(models.Difficulties))
	for _, d := range models.Difficulties {
		path := filepath.Join(dir, string(d)+"_words.txt")
		list, err := readList(path)
		if err != nil {
			return nil, err
		}
		if len(list) == 0 {
			return nil, fmt.Errorf("word list %s is empty", path)
		}
		lists[d] = list
	}
	return lists, nil
}

func readList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open word list: %w", err)
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if w := strings.TrimSpace(sc.Text()); w != "" {
			out = append(out, w)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read word list %s: %w", path, err)
	}
	return out, nil
}

// Defaults returns the built-in word lists.
func Defaults() map[models.Difficulty][]string {
	return map[models.Difficulty][]string{
		models.Easy: {
			"dog", "cat", "house", "tree", "car", "sun", "moon", "fish", "book", "chair",
			"ball", "apple", "bird", "baby", "hat", "door", "shoe", "eye", "egg", "boat",
			"clock", "star", "cup", "key", "hand", "foot", "bed", "nose", "mouth", "ear",
		},
		models.Medium: {
			"airplane", "elephant", "computer", "bicycle", "mountain", "rainbow", "guitar", "pizza", "castle", "robot",
			"butterfly", "octopus", "hamburger", "penguin", "dinosaur", "telescope", "cactus", "tornado", "dolphin", "kangaroo",
			"umbrella", "volcano", "scarecrow", "lighthouse", "waterfall", "snowman", "pirate", "cowboy", "mermaid", "dragon",
		},
		models.Hard: {
			"skyscraper", "astronaut", "submarine", "orchestra", "helicopter", "rhinoceros", "escalator", "microscope", "parachute", "trampoline",
			"firefighter", "vegetarian", "electricity", "refrigerator", "celebration", "imagination", "thermometer", "skateboard", "binoculars", "caterpillar",
			"constellation", "photographer", "cheerleader", "rollercoaster", "kaleidoscope", "surveillance", "extraterrestrial", "procrastination", "independence", "photosynthesis",
		},
	}
}
