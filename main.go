package main

import "dealchat/cmd"

func main() {
	cmd.Execute()
}
