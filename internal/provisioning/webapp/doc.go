// Package webapp drives the Django management command: applying migrations
// and creating the administrative user.
package webapp
