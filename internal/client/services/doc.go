// Package services contains the application services that sit between the
// terminal commands and the Content API: profile management, the admin
// views and the stored-document library.
package services
