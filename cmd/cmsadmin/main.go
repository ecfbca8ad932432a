package main

import "github.com/upeosoft/cms/cmd/cmsadmin/cmd"

func main() {
	cmd.Execute()
}
