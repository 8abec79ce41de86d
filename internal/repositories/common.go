package repositories

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Page selects one page of a list query. Number starts at 1.
type Page struct {
	Number int
	Size   int
}

func (p Page) Offset() int {
	if p.Number < 1 {
		return 0
	}
	return (p.Number - 1) * p.Size
}

func (p Page) apply(db *gorm.DB) *gorm.DB {
	if p.Size <= 0 {
		return db
	}
	return db.Offset(p.Offset()).Limit(p.Size)
}

// containsPattern builds a case-insensitive LIKE pattern for use with
// "LOWER(col) LIKE ? ESCAPE '!'". The escape char is portable across
// postgres, mysql and sqlite.
func containsPattern(s string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return "%" + r.Replace(strings.ToLower(s)) + "%"
}

func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// shareable lets a filtered query be reused for both Count and Find.
func shareable(db *gorm.DB) *gorm.DB {
	return db.Session(&gorm.Session{})
}
