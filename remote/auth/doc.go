/*
Package auth produces HTTP clients authorized against the Google OAuth2
endpoints, suitable for the sheets client.

The package wraps the standard installed-app flow: application credentials
are read from a JSON file, a stored user token is reused when one exists,
and otherwise the authorization link is printed so the user can paste the
one-time code back in. Freshly granted tokens can be persisted for later
runs, the token file is written with mode 0600.

# Usage Example

	httpClient, err := auth.Client(ctx, auth.Options{
		CredentialsFile: "credentials.json",
		TokenFile:       "token.json",
		SaveToken:       true,
	})
	if err != nil {
		log.Fatalf("authorization failed: %v", err)
	}

	table, err := sheets.New(config, httpClient, logger)

Token refresh is handled transparently by the returned client. Service
accounts and other non-interactive credential types are out of scope, a
pre-authorized *http.Client can always be passed to sheets.New directly.
*/
package auth
