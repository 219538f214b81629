package mailerlite

type address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sendEmailRequest struct {
	To          []address `json:"to"`
	From        address   `json:"from"`
	Subject     string    `json:"subject"`
	HTML        string    `json:"html"`
	Tags        []string  `json:"tags"`
	TrackOpens  bool      `json:"track_opens"`
	TrackClicks bool      `json:"track_clicks"`
}

type subscriberRequest struct {
	Email              string         `json:"email"`
	Fields             map[string]any `json:"fields,omitempty"`
	Groups             []string       `json:"groups,omitempty"`
	Status             string         `json:"status,omitempty"`
	AutomationTriggers []string       `json:"automation_triggers,omitempty"`
}

type group struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type groupListResponse struct {
	Data []group `json:"data"`
}

type groupResponse struct {
	Data group `json:"data"`
}

type dataResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}
