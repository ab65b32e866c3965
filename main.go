/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/kanak-sys/ToDo-App/cmd"

func main() {
	cmd.Execute()
}
