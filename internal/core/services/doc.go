// Package services implements the driving port interfaces.
// Services validate input, apply defaults and delegate to driven ports;
// they never talk HTTP themselves.
package services
