package config

import (
	"fmt"

	postgrest "github.com/supabase-community/postgrest-go"
	supa "github.com/supabase-community/supabase-go"
)

// NewSupabaseClient builds the Supabase client used for auth and storage.
func NewSupabaseClient(s *Settings) (*supa.Client, error) {
	client, err := supa.NewClient(s.SupabaseURL, s.SupabaseAnonKey, nil)
	if err != nil {
		return nil, fmt.Errorf("initializing Supabase client: %w", err)
	}
	return client, nil
}

// NewRestClient builds a PostgREST client for the project's REST endpoint.
// With an empty accessToken the public key is used as bearer, otherwise the
// requests run as the signed-in user.
func NewRestClient(s *Settings, accessToken string) (*postgrest.Client, error) {
	return RestClient(s.RestURL(), s.SupabaseAnonKey, accessToken)
}

// RestClient builds a PostgREST client against restURL.
func RestClient(restURL, apiKey, accessToken string) (*postgrest.Client, error) {
	bearer := apiKey
	if accessToken != "" {
		bearer = accessToken
	}
	client := postgrest.NewClient(restURL, "", map[string]string{
		"apikey":        apiKey,
		"Authorization": "Bearer " + bearer,
	})
	if client.ClientError != nil {
		return nil, fmt.Errorf("initializing PostgREST client: %w", client.ClientError)
	}
	return client, nil
}
