// Package notification composes outbound patient messages. Delivery over
// WhatsApp happens client-side through a deep link; this package only builds
// the link and renders message templates, it never talks to a provider.
package notification

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
)

// WhatsAppLink composes a wa.me deep link for a phone number and message.
// Every non-digit character is stripped from the phone; the message is
// URL-encoded. The link is returned even for an empty message.
func WhatsAppLink(phone, message string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	return "https://wa.me/" + digits.String() + "?text=" + url.QueryEscape(message)
}

// Built-in template IDs.
const (
	TemplateWhatsAppGreeting     = "whatsapp-greeting"
	TemplateAppointmentConfirmed = "appointment-confirmed"
	TemplateAppointmentCancelled = "appointment-cancelled"
	TemplatePrescriptionReady    = "prescription-ready"
)

// defaultEngine backs the package-level helpers; the built-in template
// bodies live only in registerBuiltIn.
var defaultEngine = NewTemplateEngine()

// DoctorGreeting renders the default message a doctor opens a WhatsApp
// conversation with.
func DoctorGreeting(patientName string) string {
	msg, _ := defaultEngine.Render(TemplateWhatsAppGreeting, map[string]string{
		"patient_name": patientName,
	})
	return msg
}

// Template defines a reusable notification message.
type Template struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Body string `json:"body"`
}

// TemplateEngine manages message templates and renders them with data.
type TemplateEngine struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewTemplateEngine creates a TemplateEngine with the built-in templates
// pre-registered.
func NewTemplateEngine() *TemplateEngine {
	e := &TemplateEngine{templates: make(map[string]*Template)}
	e.registerBuiltIn()
	return e
}

func (e *TemplateEngine) registerBuiltIn() {
	builtIn := []Template{
		{
			ID:   TemplateWhatsAppGreeting,
			Name: "WhatsApp Greeting",
			Body: "Hello {{patient_name}}, this is your doctor from MediConnect.",
		},
		{
			ID:   TemplateAppointmentConfirmed,
			Name: "Appointment Confirmed",
			Body: "Dear {{patient_name}}, your appointment on {{date}} at {{time}} has been confirmed.",
		},
		{
			ID:   TemplateAppointmentCancelled,
			Name: "Appointment Cancelled",
			Body: "Dear {{patient_name}}, your appointment on {{date}} at {{time}} has been cancelled.",
		},
		{
			ID:   TemplatePrescriptionReady,
			Name: "Prescription Ready",
			Body: "Dear {{patient_name}}, your doctor has added a prescription to your appointment. Please log in to view it.",
		},
	}
	for i := range builtIn {
		t := builtIn[i]
		e.templates[t.ID] = &t
	}
}

// RegisterTemplate adds or replaces a template in the engine.
func (e *TemplateEngine) RegisterTemplate(t Template) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.templates[t.ID] = &t
}

// Render looks up a template by ID and performs {{key}} replacement using
// the supplied data map. Keys present in the template but absent from data
// are left as-is.
func (e *TemplateEngine) Render(templateID string, data map[string]string) (string, error) {
	e.mu.RLock()
	t, ok := e.templates[templateID]
	e.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("template %q not found", templateID)
	}

	body := t.Body
	for k, v := range data {
		body = strings.ReplaceAll(body, "{{"+k+"}}", v)
	}
	return body, nil
}
