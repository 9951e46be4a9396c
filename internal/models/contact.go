package models

// Inquiry types accepted by the contact endpoint
const (
	InquiryConsultation = "consultation"
	InquiryDemo         = "demo"
	InquiryPartnership  = "partnership"
	InquirySupport      = "support"
	InquiryOther        = "other"
)

// ContactForm is the raw contact form as the user typed it
type ContactForm struct {
	Name             string   `json:"name" validate:"required,max=100"`
	Email            string   `json:"email" validate:"required,contactemail"`
	Company          string   `json:"company" validate:"required,max=200"`
	Phone            string   `json:"phone" validate:"max=20"`
	Position         string   `json:"position" validate:"max=100"`
	InquiryType      string   `json:"inquiryType" validate:"omitempty,oneof=consultation demo partnership support other"`
	Subject          string   `json:"subject" validate:"required,max=200"`
	Message          string   `json:"message" validate:"required,min=10,max=2000"`
	Budget           string   `json:"budget"`
	Timeline         string   `json:"timeline"`
	Services         []string `json:"services"`
	MarketingConsent bool     `json:"marketingConsent"`
}

// ContactSubmission is the normalized body of POST /api/contact/contact-submit
type ContactSubmission struct {
	Name               string   `json:"name"`
	Email              string   `json:"email"`
	Phone              *string  `json:"phone"`
	Company            string   `json:"company"`
	Position           *string  `json:"position"`
	Subject            string   `json:"subject"`
	Message            string   `json:"message"`
	InquiryType        string   `json:"inquiry_type"`
	BudgetRange        *string  `json:"budget_range"`
	Timeline           *string  `json:"timeline"`
	ServicesInterested []string `json:"services_interested"`
	MarketingConsent   bool     `json:"marketing_consent"`
}

// ContactResponse is the success body of the contact endpoint
type ContactResponse struct {
	InquiryID             string `json:"inquiry_id"`
	Status                string `json:"status"`
	Message               string `json:"message"`
	EstimatedResponseTime string `json:"estimated_response_time"`
}
