package tests

import (
	"bufio"
	"net"
	"net/textproto"
	"sync"
)

// RawServer answers every connection with an empty 200 and keeps the request
// head exactly as it came off the wire, before net/http folds it into
// Request fields.
type RawServer struct {
	URL string

	ln    net.Listener
	mu    sync.Mutex
	heads []textproto.MIMEHeader
	wg    sync.WaitGroup
}

func NewRawServer() *RawServer {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		panic(err)
	}
	s := &RawServer{URL: "http://" + ln.Addr().String(), ln: ln}
	s.wg.Add(1)
	go s.serve()
	return s
}

func (s *RawServer) serve() {
	defer s.wg.Done()
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		s.handle(conn)
	}
}

func (s *RawServer) handle(conn net.Conn) {
	defer conn.Close()
	tp := textproto.NewReader(bufio.NewReader(conn))
	if _, err := tp.ReadLine(); err != nil {
		return
	}
	head, err := tp.ReadMIMEHeader()
	if err != nil {
		return
	}
	s.mu.Lock()
	s.heads = append(s.heads, head)
	s.mu.Unlock()
	_, _ = conn.Write([]byte("HTTP/1.1 200 OK\r\nContent-Length: 0\r\nConnection: close\r\n\r\n"))
}

// Last returns the header block of the most recent request.
func (s *RawServer) Last() textproto.MIMEHeader {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.heads) == 0 {
		return nil
	}
	return s.heads[len(s.heads)-1]
}

func (s *RawServer) Close() {
	_ = s.ln.Close()
	s.wg.Wait()
}
