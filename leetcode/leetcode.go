// Package leetcode is a read-only client for the public LeetCode GraphQL API.
package leetcode

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/dsagrinders/dsagrinders/config"
)

// Sentinel errors surfaced to registration and refresh flows.
var (
	// ErrUserNotFound is returned when no LeetCode account matches the username.
	ErrUserNotFound = errors.New("leetcode user not found")
	// ErrStatsUnavailable is returned when the account exists but exposes no
	// submission stats, e.g. a private profile.
	ErrStatsUnavailable = errors.New("leetcode submission stats unavailable")
)

// UserStats holds the cumulative accepted-submission counts by difficulty
// and the account's global ranking.
type UserStats struct {
	Username string
	Easy     int
	Medium   int
	Hard     int
	Total    int
	Ranking  int
}

// Submission is a recently accepted problem.
type Submission struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	TitleSlug string `json:"titleSlug"`
	Timestamp int64  `json:"timestamp,string"`
}

// Client queries the LeetCode GraphQL endpoint.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

// New creates a new LeetCode client.
func New(cfg *config.LeetCodeConfig) (*Client, error) {
	baseURL, err := url.Parse(cfg.GraphQLURL)
	if err != nil {
		return nil, fmt.Errorf("invalid leetcode URL: %w", err)
	}

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

const userStatsQuery = `
query getUserProfile($username: String!) {
  matchedUser(username: $username) {
    username
    profile {
      ranking
    }
    submitStatsGlobal {
      acSubmissionNum {
        difficulty
        count
      }
    }
  }
}`

const recentSubmissionsQuery = `
query recentAcSubmissions($username: String!, $limit: Int!) {
  recentAcSubmissionList(username: $username, limit: $limit) {
    id
    title
    titleSlug
    timestamp
  }
}`

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type submissionCount struct {
	Difficulty string `json:"difficulty"`
	Count      int    `json:"count"`
}

type userStatsResponse struct {
	Data struct {
		MatchedUser *struct {
			Username string `json:"username"`
			Profile  *struct {
				Ranking int `json:"ranking"`
			} `json:"profile"`
			SubmitStatsGlobal *struct {
				AcSubmissionNum []submissionCount `json:"acSubmissionNum"`
			} `json:"submitStatsGlobal"`
		} `json:"matchedUser"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type recentSubmissionsResponse struct {
	Data struct {
		RecentAcSubmissionList []Submission `json:"recentAcSubmissionList"`
	} `json:"data"`
}

// FetchUserStats returns the cumulative solved counts and ranking for a
// username. A missing account maps to ErrUserNotFound, an account without
// submission stats to ErrStatsUnavailable.
func (c *Client) FetchUserStats(ctx context.Context, username string) (*UserStats, error) {
	var resp userStatsResponse
	if err := c.query(ctx, userStatsQuery, map[string]any{"username": username}, &resp); err != nil {
		return nil, err
	}

	matched := resp.Data.MatchedUser
	if matched == nil {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, username)
	}
	if matched.SubmitStatsGlobal == nil || len(matched.SubmitStatsGlobal.AcSubmissionNum) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrStatsUnavailable, username)
	}

	stats := &UserStats{Username: matched.Username}
	for _, n := range matched.SubmitStatsGlobal.AcSubmissionNum {
		switch n.Difficulty {
		case "Easy":
			stats.Easy = n.Count
		case "Medium":
			stats.Medium = n.Count
		case "Hard":
			stats.Hard = n.Count
		case "All":
			stats.Total = n.Count
		}
	}
	if matched.Profile != nil {
		stats.Ranking = matched.Profile.Ranking
	}
	return stats, nil
}

// FetchRecentSubmissions returns up to limit recently accepted problems for
// a username, newest first.
func (c *Client) FetchRecentSubmissions(ctx context.Context, username string, limit int) ([]Submission, error) {
	var resp recentSubmissionsResponse
	vars := map[string]any{"username": username, "limit": limit}
	if err := c.query(ctx, recentSubmissionsQuery, vars, &resp); err != nil {
		return nil, err
	}
	return resp.Data.RecentAcSubmissionList, nil
}

func (c *Client) query(ctx context.Context, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("failed to marshal graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL.String(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create graphql request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Referer", "https://leetcode.com")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute graphql request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("leetcode API returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode graphql response: %w", err)
	}
	return nil
}
