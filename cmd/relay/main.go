// Command relay serves the function-calling relay over HTTP or MCP, or
// runs single prompts from the terminal.
package main

func main() {
	Execute()
}
