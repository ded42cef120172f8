package users

import "time"

// User is a console account. FullName is the fallback display identity when
// no party record is linked to the account.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	PasswordHash string    `json:"-"`
	Language     string    `json:"language"`
	Calendar     string    `json:"calendar"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Supported preference values. Language drives digit shaping and label
// direction on rendered documents, calendar drives date presentation.
const (
	LanguageFa = "fa"
	LanguageEn = "en"

	CalendarJalali    = "jalali"
	CalendarGregorian = "gregorian"
)

func ValidLanguage(v string) bool {
	return v == LanguageFa || v == LanguageEn
}

func ValidCalendar(v string) bool {
	return v == CalendarJalali || v == CalendarGregorian
}
