package main

import "digiread/internal/app"

// @title        DigiRead Store API
// @version      1.0
// @description  Passwordless auth, catalog, reading and checkout for the DigiRead ebook store.
// @BasePath     /
func main() {
	app.Run()
}
