// Package filler writes mapped values into a target document.
//
// Each mapping's locator is resolved again right before the write, because
// handlers fired by earlier writes may have rebuilt parts of the page (a
// dependent dropdown, say). After each write the control gets the input,
// change and blur notifications a browser user would have produced.
package filler
