package page

import (
	"fmt"

	"github.com/couchcryptid/volunteer-map-page/internal/domain"
	"github.com/couchcryptid/volunteer-map-page/internal/mapview"
)

// Section names in render order.
const (
	SectionNavigation   = "navigation"
	SectionIntroduction = "introduction"
	SectionPhone        = "phone"
	SectionRegistration = "registration"
	SectionFAQ          = "faq"
	SectionMap          = "map"
)

var sectionOrder = []string{
	SectionNavigation,
	SectionIntroduction,
	SectionPhone,
	SectionRegistration,
	SectionFAQ,
	SectionMap,
}

// NavLink is an entry of the navigation bar.
type NavLink struct {
	Label string `json:"label"`
	Href  string `json:"href"`
}

// Navigation links, matching the static pages of the site.
var Navigation = []NavLink{
	{Label: "Frågor & Svar", Href: "/#faq"},
	{Label: "Om oss", Href: "/om-oss"},
	{Label: "I media", Href: "/i-media"},
}

// Phone is the number at-risk callers dial.
const (
	PhoneDisplay = "0766861551"
	PhoneHref    = "tel:+46766861551"
)

// FAQEntry is one question of the FAQ panel.
type FAQEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

var FAQ = []FAQEntry{
	{
		Question: "Vem kan ringa Telehelp?",
		Answer:   "Alla som tillhör en riskgrupp eller är smittade och behöver hjälp med vardagssysslor.",
	},
	{
		Question: "Vad gör jag som volontär?",
		Answer:   "Du blir uppringd av personer i ditt närområde och hjälper till med exempelvis matinköp eller att hämta ut mediciner.",
	},
	{
		Question: "Hur avregistrerar jag mig?",
		Answer:   "Ring Telehelps nummer från telefonen du registrerade dig med och följ instruktionerna.",
	},
}

// RegistrationView is either the external form or the outcome message.
type RegistrationView struct {
	ShowForm    bool   `json:"showForm"`
	Message     string `json:"message,omitempty"`
	Outcome     string `json:"outcome"`
	CallbackURL string `json:"callbackUrl"`
}

// View is the fully rendered page.
type View struct {
	ID           string           `json:"id"`
	Time         domain.TimeValue `json:"time"`
	Sections     []string         `json:"sections"`
	Navigation   []NavLink        `json:"navigation"`
	PhoneDisplay string           `json:"phoneDisplay"`
	PhoneHref    string           `json:"phoneHref"`
	Registration RegistrationView `json:"registration"`
	FAQ          []FAQEntry       `json:"faq"`
	Map          mapview.View     `json:"map"`
	MapURL       string           `json:"mapUrl"`
}

// MapPending reports whether the map data has not been committed yet, in
// which case the browser keeps asking MapURL for it.
func (v View) MapPending() bool {
	return v.Map.Phase == mapview.PhaseLoading.String() || v.Map.Phase == mapview.PhaseSettling.String()
}

// CallbackPath is where the registration form reports its result.
func CallbackPath(id string) string {
	return fmt.Sprintf("/pages/%s/registration-result", id)
}

// MapPath serves the JSON map view of a page.
func MapPath(id string) string {
	return fmt.Sprintf("/pages/%s/map", id)
}

// PressItem is one media appearance.
type PressItem struct {
	Header      string
	Name        string
	Link        string
	Description string
}

var Press = []PressItem{
	{
		Header:      "Vinnare av Hack The Crisis 2020",
		Name:        "Hack the Crisis pressmeddelande",
		Link:        "https://www.mynewsdesk.com/se/hack-for-sweden/pressreleases/winners-of-hack-the-crisis-2989133",
		Description: "Det var några långa dagar och nätter, men det gick bra tillslut",
	},
}

// StaticView is a page without per-load state, such as "Om oss".
type StaticView struct {
	Title      string
	Navigation []NavLink
	Press      []PressItem
}

// Render builds the page from the current state of the shell.
func (s *Shell) Render() (View, error) {
	mv, err := s.mapView.View()
	if err != nil {
		return View{}, fmt.Errorf("render page %s: %w", s.id, err)
	}
	s.metrics.MarkersRendered.Observe(float64(mv.MarkerCount()))

	outcome := s.registration.Outcome()
	return View{
		ID:           s.id,
		Time:         s.Time(),
		Sections:     append([]string(nil), sectionOrder...),
		Navigation:   Navigation,
		PhoneDisplay: PhoneDisplay,
		PhoneHref:    PhoneHref,
		Registration: RegistrationView{
			ShowForm:    !outcome.Terminal(),
			Message:     outcome.Message,
			Outcome:     outcome.Kind.String(),
			CallbackURL: CallbackPath(s.id),
		},
		FAQ:    FAQ,
		Map:    mv,
		MapURL: MapPath(s.id),
	}, nil
}
