/* models.go
 * Contains the web server configuration and the JSON bodies it returns
 */

package web

import (
	"github.com/homebackend/gnome-live-tennis-sub000/api/api"
	"github.com/sirupsen/logrus"
)

// Config holds the configuration for the web server
type Config struct {
	Addr string
	API  *api.API
	Log  logrus.FieldLogger
}

// Server serves the status and control endpoints over the API
type Server struct {
	api *api.API
	log logrus.FieldLogger
}

type toggleResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Selected bool   `json:"selected"`
}

type errorResponse struct {
	Error string `json:"error"`
}
