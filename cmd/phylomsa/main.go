// cmd/phylomsa/main.go
package main

import (
	"phylomsa/internal/app"
	"phylomsa/internal/appshell"
)

func main() {
	appshell.Main(app.RunContext)
}
