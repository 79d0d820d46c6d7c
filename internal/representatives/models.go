package representatives

// Representative is a pool worker reachable through the hotline.
//
// The routing engine only reads ID and toggles Available; the remaining fields
// belong to the directory and are carried along for display.
type Representative struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Bio       string `json:"bio,omitempty"`
	Available bool   `json:"is_available"`
}

// DefaultRoster is the roster used when no roster file is configured.
func DefaultRoster() []Representative {
	return []Representative{
		{
			ID:        "1",
			Name:      "John Smith",
			Email:     "john.smith@example.com",
			Phone:     "+1 (555) 123-4567",
			Bio:       "Experienced representative with 5 years of service.",
			Available: true,
		},
		{
			ID:        "2",
			Name:      "Sarah Johnson",
			Email:     "sarah.johnson@example.com",
			Phone:     "+1 (555) 234-5678",
			Bio:       "Specialized in customer support and problem resolution.",
			Available: true,
		},
		{
			ID:        "3",
			Name:      "Michael Brown",
			Email:     "michael.brown@example.com",
			Phone:     "+1 (555) 345-6789",
			Bio:       "Expert in technical support and troubleshooting.",
			Available: false,
		},
	}
}
