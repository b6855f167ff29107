// Package service keeps the catalog of tool providers behind the API.
//
// Providers (clipboard, scraper, matcher) register once at startup. Tool
// IDs take the form "<service>.<tool>" and calls are routed by the service
// part.
//
// Discovery ranks services against a free-text query by keyword matches in
// their name, description and capabilities.
//
// Example Usage:
//
//	registry := service.NewRegistry()
//	registry.Register(clipboardProvider)
//	services := registry.Discover("fill form", 5)
//	result, err := registry.Execute(ctx, "clipboard.paste", params, appCtx)
package service
