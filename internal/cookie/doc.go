// Package cookie handles cookie-jar files for authenticated crawling.
//
// A jar is captured once with "sitescribe cookies" (interactive browser
// login) and then passed opaquely to the rendered fetch strategy, which
// seeds it into the headless browser session before navigation.
package cookie
