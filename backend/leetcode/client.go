package leetcode

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// DefaultBaseURL is the public LeetCode GraphQL endpoint.
const DefaultBaseURL = "https://leetcode.com/graphql"

// ErrUserNotFound means the API answered but matched no profile for the
// username. Distinct from transport or decoding failures.
var ErrUserNotFound = errors.New("leetcode user not found")

// Profile is the subset of a LeetCode profile the tracker cares about.
type Profile struct {
	Username     string `json:"username"`
	TotalSolved  int    `json:"total_solved"`
	EasySolved   int    `json:"easy_solved"`
	MediumSolved int    `json:"medium_solved"`
	HardSolved   int    `json:"hard_solved"`
	AvatarURL    string `json:"avatar_url,omitempty"`
}

// Client queries the LeetCode GraphQL API for profile statistics.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

const profileQuery = `
query getUserProfile($username: String!) {
  matchedUser(username: $username) {
    username
    profile {
      userAvatar
    }
    submitStats {
      acSubmissionNum {
        difficulty
        count
      }
    }
  }
}`

type graphqlRequest struct {
	Query     string            `json:"query"`
	Variables map[string]string `json:"variables"`
}

type graphqlResponse struct {
	Data struct {
		MatchedUser *struct {
			Username string `json:"username"`
			Profile  struct {
				UserAvatar string `json:"userAvatar"`
			} `json:"profile"`
			SubmitStats struct {
				AcSubmissionNum []struct {
					Difficulty string `json:"difficulty"`
					Count      int    `json:"count"`
				} `json:"acSubmissionNum"`
			} `json:"submitStats"`
		} `json:"matchedUser"`
	} `json:"data"`
}

// FetchProfile fetches the current cumulative solved counts for username.
// Returns ErrUserNotFound when the API matches no profile.
func (c *Client) FetchProfile(ctx context.Context, username string) (*Profile, error) {
	body, err := json.Marshal(graphqlRequest{
		Query:     profileQuery,
		Variables: map[string]string{"username": username},
	})
	if err != nil {
		return nil, fmt.Errorf("encoding query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Referer", "https://leetcode.com")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("querying leetcode: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("leetcode returned status %d", resp.StatusCode)
	}

	var decoded graphqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	matched := decoded.Data.MatchedUser
	if matched == nil {
		return nil, ErrUserNotFound
	}

	profile := &Profile{
		Username:  matched.Username,
		AvatarURL: matched.Profile.UserAvatar,
	}
	for _, bucket := range matched.SubmitStats.AcSubmissionNum {
		switch bucket.Difficulty {
		case "All":
			profile.TotalSolved = bucket.Count
		case "Easy":
			profile.EasySolved = bucket.Count
		case "Medium":
			profile.MediumSolved = bucket.Count
		case "Hard":
			profile.HardSolved = bucket.Count
		}
	}
	return profile, nil
}
