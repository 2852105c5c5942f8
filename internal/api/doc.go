// Package api provides the HTTP plumbing shared by the provider clients: a JSON REST
// client with retries, request pacing and typed errors.
//
// Provider packages wrap a Client with their own endpoints and typed records:
//   - Etsy Open API v3: https://openapi.etsy.com/v3/application
//   - Square Connect v2: https://connect.squareup.com
//   - Shift4Shop REST v2: https://apirest.3dcart.com/3dCartWebAPI/v2
package api
