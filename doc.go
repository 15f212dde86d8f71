// Package main provides the entry point of gosettings-admin, a web-based
// administration tool for site settings. Administrators register settings
// keys (a machine name, label, bundle and description), and every key is
// backed by a content record editors can fill in and translate.
//
// Run "gosettings-admin start" to serve the admin UI, or use the keys and
// reconcile commands to manage the registry from the command line.
package main
