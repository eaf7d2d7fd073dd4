// Package logging enables remote syslog reception so the JFTF services can
// log to the local rsyslog daemon over UDP.
package logging
