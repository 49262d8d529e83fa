package instagram

import "time"

// Media is one post from a user's feed, reduced to what the month counter
// needs: the permalink code and the publish time (normalized to UTC).
type Media struct {
	ID      string
	Code    string
	TakenAt time.Time
}

// PostURL returns the canonical permalink for this post
func (m Media) PostURL() string {
	return GetPostURL(m.Code)
}

// apiResponse is the envelope every private-API reply carries. The error
// fields are only populated on failure.
type apiResponse struct {
	Status          string         `json:"status"`
	Message         string         `json:"message"`
	ErrorType       string         `json:"error_type"`
	FeedbackMessage string         `json:"feedback_message"`
	Challenge       *challengeInfo `json:"challenge"`
}

// challengeInfo points at the challenge flow the login response demands
type challengeInfo struct {
	URL     string `json:"url"`
	APIPath string `json:"api_path"`
}

// loginResponse is the interesting subset of the login endpoint's reply
type loginResponse struct {
	apiResponse
	LoggedInUser struct {
		PK       int64  `json:"pk"`
		Username string `json:"username"`
	} `json:"logged_in_user"`
}

// challengeStateResponse describes the current step of a challenge flow
type challengeStateResponse struct {
	apiResponse
	StepName string `json:"step_name"`
	StepData struct {
		ContactPoint string `json:"contact_point"`
		FormType     string `json:"form_type"`
	} `json:"step_data"`
	Action string `json:"action"`
}

// webProfileResponse is the web profile endpoint's reply
type webProfileResponse struct {
	Status string `json:"status"`
	Data   struct {
		User struct {
			ID        string `json:"id"`
			Username  string `json:"username"`
			IsPrivate bool   `json:"is_private"`
		} `json:"user"`
	} `json:"data"`
}

// feedResponse is one page of the user feed endpoint's reply
type feedResponse struct {
	Status        string     `json:"status"`
	Items         []feedItem `json:"items"`
	MoreAvailable bool       `json:"more_available"`
	NextMaxID     string     `json:"next_max_id"`
}

// feedItem is one post as the feed endpoint serializes it
type feedItem struct {
	ID      string `json:"id"`
	PK      int64  `json:"pk"`
	Code    string `json:"code"`
	TakenAt int64  `json:"taken_at"`
}

// media converts the wire item to the public shape
func (i feedItem) media() Media {
	return Media{
		ID:      i.ID,
		Code:    i.Code,
		TakenAt: time.Unix(i.TakenAt, 0).UTC(),
	}
}
