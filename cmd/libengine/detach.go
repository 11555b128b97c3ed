package main

/*
extern void engine_shutdown(void);

// Runs when the host unloads the library without calling engine_shutdown
// first, so the embedded runtime is not leaked on implicit unload. The Go
// side makes shutdown idempotent, so an explicit prior call is harmless.
static void __attribute__((destructor)) libengine_detach(void) {
	engine_shutdown();
}
*/
import "C"
