// cmd/taxassign/main.go
package main

import (
	"taxassign/internal/app"
	"taxassign/internal/appshell"
)

func main() { appshell.Main(app.RunContext) }
