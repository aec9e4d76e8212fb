// Command hexlayout compiles annotated binary file layouts.
package main

func main() {
	execute()
}
