// Package contact builds the pre-filled email and WhatsApp links mentees use
// to reach mentors. Link building is pure string work; no messages are sent
// from the server.
package contact

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// defaultRegion is used when a phone number has no country prefix.
const defaultRegion = "IL"

var ErrInvalidPhoneNumber = errors.New("invalid phone number")

// Template is a pre-filled message for a contact channel.
type Template struct {
	Subject string
	Body    string
}

// Links is the bundle of launchable contact URLs for one mentor.
type Links struct {
	GmailCompose string `json:"gmailCompose"`
	WhatsApp     string `json:"whatsapp"`
	WhatsAppWeb  string `json:"whatsappWeb"`
	WhatsAppAPI  string `json:"whatsappApi"`
}

// ToE164NoPlus normalizes a raw phone number into E.164 without the leading
// '+', the form the WhatsApp URL schemes expect.
//
//	"054-1234567"   -> "972541234567"
//	"+972541234567" -> "972541234567"
func ToE164NoPlus(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidPhoneNumber
	}

	num, err := phonenumbers.Parse(trimmed, defaultRegion)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPhoneNumber, err)
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", ErrInvalidPhoneNumber
	}

	return strings.TrimPrefix(phonenumbers.Format(num, phonenumbers.E164), "+"), nil
}

// EmailTemplate builds the guidance-request mail a mentee sends a mentor.
func EmailTemplate(mentorFirstName, menteeName string) Template {
	return Template{
		Subject: "Guidance Request - MentorHub",
		Body: fmt.Sprintf(`Hi %s,

My name is %s, and I'm a mentee on MentorHub.
I'd love to schedule a short call to ask a few questions and get your guidance.

Thank you so much!`, mentorFirstName, menteeName),
	}
}

// WhatsAppMessage builds the short WhatsApp opener.
func WhatsAppMessage(mentorFirstName, menteeName string) string {
	return fmt.Sprintf("Hi %s! This is %s from MentorHub. I'd love to schedule a short call and get your advice.", mentorFirstName, menteeName)
}

// GmailComposeURL opens the Gmail web composer pre-filled.
func GmailComposeURL(to, subject, body string) string {
	params := url.Values{}
	params.Set("to", to)
	params.Set("su", subject)
	params.Set("body", body)
	params.Set("view", "cm")
	params.Set("ui", "2")
	params.Set("tf", "1")
	return "https://mail.google.com/mail/?" + params.Encode()
}

// WhatsAppHref targets the app first (wa.me).
func WhatsAppHref(e164NoPlus, text string) string {
	return fmt.Sprintf("https://wa.me/%s?text=%s&app_absent=0",
		url.QueryEscape(e164NoPlus), url.QueryEscape(text))
}

// WhatsAppWebURL targets WhatsApp Web directly.
func WhatsAppWebURL(e164NoPlus, text string) string {
	return fmt.Sprintf("https://web.whatsapp.com/send?phone=%s&text=%s&app_absent=0",
		url.QueryEscape(e164NoPlus), url.QueryEscape(text))
}

// WhatsAppAPIURL is the fallback when neither app nor web is known.
func WhatsAppAPIURL(e164NoPlus, text string) string {
	return fmt.Sprintf("https://api.whatsapp.com/send?phone=%s&text=%s",
		url.QueryEscape(e164NoPlus), url.QueryEscape(text))
}

// BuildLinks assembles every contact URL for a mentor, personalized with the
// mentee's name.
func BuildLinks(mentorFirstName, mentorEmail, mentorPhone, menteeName string) (Links, error) {
	phone, err := ToE164NoPlus(mentorPhone)
	if err != nil {
		return Links{}, err
	}

	mail := EmailTemplate(mentorFirstName, menteeName)
	message := WhatsAppMessage(mentorFirstName, menteeName)

	return Links{
		GmailCompose: GmailComposeURL(mentorEmail, mail.Subject, mail.Body),
		WhatsApp:     WhatsAppHref(phone, message),
		WhatsAppWeb:  WhatsAppWebURL(phone, message),
		WhatsAppAPI:  WhatsAppAPIURL(phone, message),
	}, nil
}
