/*
Package authsdk provides a client SDK for the bitebank authentication service
and the error type every bitebank service answers with.

# SDKClient

Create an SDKClient to call the auth endpoints:

	client := authsdk.NewSDKClient("http://localhost:8001")

	tok, err := client.Register(ctx, authsdk.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "s3cret",
	})

	tok, err = client.Login(ctx, "alice", "s3cret")

	id, err := client.VerifyToken(ctx, tok.AccessToken)

Services that talk to several upstreams share one pooled http.Client:

	client := authsdk.NewSDKClientWithHTTP(authURL, sharedClient)

# Errors

Every non-success response is decoded into an *APIError carrying the HTTP
status, the short error code and its description. Predefined errors compare
with errors.Is on status and code:

	_, err := client.Login(ctx, "alice", "wrong")
	if errors.Is(err, authsdk.ErrInvalidCredentials) {
		// 401 invalid_grant
	}

Transport failures, where no response came back at all, wrap ErrUnreachable.

Servers write the same type:

	authsdk.ErrInvalidRequest.WithDescription("username is required").WriteError(w)
*/
package authsdk
