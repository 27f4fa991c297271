// Package broker publishes the on-air state to an MQTT broker.
//
// # Connection model
//
// Every [Publisher.Publish] call tears down the previous client and dials a
// fresh one before sending. A laptop that moved between networks since the
// last publish therefore never writes into a dead socket. The client is left
// connected afterwards so broker status stays observable, and is replaced on
// the next publish.
//
// Failures never propagate as panics: a DNS error, refused connection, or
// rejected publish is returned as [ConnectError] or [PublishError] and is
// logged by the caller. A missed notification is acceptable, a crashed
// watcher is not.
//
// # Acknowledgement
//
// With Config.WaitForAck unset (the default) a publish returns as soon as the
// message is handed to the client. With it set, Publish blocks until the
// broker acknowledges or Config.AckTimeout elapses.
//
// # Payload
//
// The message is a Futurehome binary switch command:
//
//	{"serv":"out_bin_switch","type":"cmd.binary.set","val_t":"bool","val":true,"props":{},"tags":null}
//
// # Debugging with mosquitto
//
//	mosquitto_sub -h futurehome-smarthub.local -p 1884 -u USER -P PASS \
//	  -t 'pt:j1/mt:cmd/rt:dev/rn:zw/ad:1/sv:out_bin_switch/ad:19_0' -v
package broker
