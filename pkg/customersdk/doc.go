// Package customersdk is a Go client for the customer service HTTP API.
//
// Unauthenticated calls (token exchange, health checks) hang off SDKClient.
// Client management calls need a Session, obtained with Login or
// NewSessionFromTokens:
//
//	c := customersdk.NewSDKClient("http://localhost:8080")
//	sess, err := c.Login(ctx, "admin", "secret")
//	if err != nil {
//		return err
//	}
//	created, err := sess.CreateClient(ctx, customersdk.ClientRequest{
//		Name:       "Jane Doe",
//		DocumentID: "12345678",
//		Email:      "jane@example.com",
//	})
//
// Failed calls return *APIError carrying the service's uniform error body.
// Use errors.As to inspect it:
//
//	var apiErr *customersdk.APIError
//	if errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict {
//		// document id or email already registered
//	}
package customersdk
