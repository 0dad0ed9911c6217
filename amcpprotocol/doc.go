// Package amcpprotocol provides a Go client for AMCP, the line-oriented
// text protocol used to remote-control a media playout server over TCP.
//
// # Protocol Overview
//
// Commands are single lines terminated by CRLF. The server answers with a
// header line carrying a numeric status code and the command name, followed
// by a body whose shape depends on the code:
//
//	200        header, data lines, blank line
//	201, 400   header, exactly one data line
//	other      header only
//
// Responses carry no request identifier, so the client is half-duplex: one
// command is in flight at a time and the response is correlated through
// the command token echoed in the header.
//
// # Basic Usage
//
// Create a device, connect to the server and wait for the link to come up.
// Connecting is asynchronous; the outcome arrives as a connection-state
// response:
//
//	device := amcpprotocol.NewDevice("127.0.0.1", amcpprotocol.DefaultPort)
//	defer device.Close()
//
//	up := make(chan struct{}, 1)
//	device.SetResponseHandler(func(resp amcpprotocol.Response) {
//	    if resp.IsConnectionState() && resp.Connected {
//	        select {
//	        case up <- struct{}{}:
//	        default:
//	        }
//	    }
//	})
//	device.Connect(true)
//	<-up
//
//	resp, err := device.Send("VERSION")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if resp.IsOK() {
//	    fmt.Println(resp.Data())
//	}
//
// # Notifications
//
// The ResponseHandler sees link up/down changes and every response that no
// Send was waiting for, for example after writing with Write:
//
//	device.SetResponseHandler(func(resp amcpprotocol.Response) {
//	    if resp.IsConnectionState() {
//	        fmt.Println("connected:", resp.Connected)
//	        return
//	    }
//	    fmt.Println(resp.Code, resp.Command, resp.Lines)
//	    device.Reset()
//	})
//	device.Write("INFO")
//
// A handler that consumes protocol responses must call Reset before the
// next response starts; Send does this on its own.
//
// # Reconnecting
//
// When the server drops the connection the device retries every
// RetryInterval. Disconnect(false) and Close stop all retrying.
//
// # Thread Safety
//
// The Device type is safe for concurrent use from multiple goroutines.
// The LineFramer and ResponseParser types are not; the Device serializes
// access to its own instances.
package amcpprotocol
