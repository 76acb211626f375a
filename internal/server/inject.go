package server

import (
	"bytes"
	"fmt"
)

// liveReloadScript reconnects after the server restarts, so a rebuild
// loop keeps working across interruptions. The %d is the server port.
const liveReloadScript = `<script>
(function() {
  var url = "ws://" + location.hostname + ":%d/__janos/ws";
  var ws;
  function connect() {
    ws = new WebSocket(url);
    ws.onmessage = function(e) {
      if (e.data === "reload") {
        location.reload();
      }
    };
    ws.onclose = function() {
      setTimeout(connect, 1000);
    };
  }
  connect();
})();
</script>`

// InjectLiveReload inserts the reload script before </body>, or
// appends it when the document has no body close tag.
func InjectLiveReload(html []byte, port int) []byte {
	script := fmt.Appendf(nil, liveReloadScript, port)

	idx := bytes.LastIndex(html, []byte("</body>"))
	if idx == -1 {
		return append(html, script...)
	}
	out := make([]byte, 0, len(html)+len(script))
	out = append(out, html[:idx]...)
	out = append(out, script...)
	out = append(out, html[idx:]...)
	return out
}
