// Package server serves the built-in HTML page used to try rooms from a browser.
package server

import (
	"fmt"
	"net/http"
)

// TestPageHandler serves an HTML test page for testing WebSocket functionality.
// It lets a user pick a room and a name, then shows history, live messages
// and the participant count of that room.
func TestPageHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	_, _ = fmt.Fprint(w, testPageHTML)
}

const testPageHTML = `<!DOCTYPE html>
<html>
<head>
    <title>Room Chat WebSocket Test</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        #messages {
            border: 1px solid #ccc;
            height: 300px;
            padding: 10px;
            overflow-y: scroll;
            margin: 10px 0;
            background-color: #f9f9f9;
        }
        input[type="text"] { width: 200px; padding: 5px; margin-right: 10px; }
        #messageInput { width: 300px; }
        button { padding: 5px 15px; background-color: #007cba; color: white; border: none; cursor: pointer; }
        button:hover { background-color: #005a87; }
        .status { margin: 10px 0; padding: 5px; border-radius: 3px; }
        .connected { background-color: #d4edda; color: #155724; }
        .disconnected { background-color: #f8d7da; color: #721c24; }
    </style>
</head>
<body>
    <h1>Room Chat WebSocket Test</h1>

    <div>
        <input type="text" id="roomInput" placeholder="Room" value="lobby">
        <input type="text" id="nameInput" placeholder="Username">
        <button id="connectButton" onclick="toggleConnection()">Connect</button>
    </div>

    <div id="status" class="status disconnected">Disconnected</div>
    <div id="count">Participants: 0</div>

    <div>
        <input type="text" id="messageInput" placeholder="Type a message..." disabled>
        <button id="sendButton" onclick="sendMessage()" disabled>Send</button>
    </div>

    <div id="messages"></div>

    <script>
        const COLORS = ['#2563eb', '#16a34a', '#9333ea', '#dc2626', '#ca8a04',
                        '#db2777', '#4f46e5', '#0d9488', '#ea580c', '#0891b2'];
        let ws = null;
        let wanted = false;
        const messagesDiv = document.getElementById('messages');
        const messageInput = document.getElementById('messageInput');
        const sendButton = document.getElementById('sendButton');
        const connectButton = document.getElementById('connectButton');
        const statusDiv = document.getElementById('status');
        const countDiv = document.getElementById('count');
        const nameInput = document.getElementById('nameInput');
        nameInput.value = 'User' + Math.floor(Math.random() * 1000);

        function colorFor(name) {
            let hash = 0;
            for (let i = 0; i < name.length; i++) {
                hash = name.charCodeAt(i) + ((hash << 5) - hash);
            }
            return COLORS[Math.abs(hash) % COLORS.length];
        }

        function addLine(text, color) {
            const line = document.createElement('div');
            line.style.margin = '5px 0';
            line.style.color = color || 'gray';
            line.textContent = text;
            messagesDiv.appendChild(line);
            messagesDiv.scrollTop = messagesDiv.scrollHeight;
        }

        function addChat(msg) {
            const at = new Date(msg.timestamp).toLocaleTimeString();
            addLine('[' + at + '] ' + msg.sender + ': ' + msg.content, colorFor(msg.sender));
        }

        function updateStatus(connected) {
            statusDiv.textContent = connected ? 'Connected' : 'Disconnected';
            statusDiv.className = 'status ' + (connected ? 'connected' : 'disconnected');
            messageInput.disabled = !connected;
            sendButton.disabled = !connected;
            connectButton.textContent = wanted ? 'Disconnect' : 'Connect';
        }

        function connect() {
            const room = encodeURIComponent(document.getElementById('roomInput').value);
            const name = encodeURIComponent(nameInput.value);
            const scheme = location.protocol === 'https:' ? 'wss://' : 'ws://';
            ws = new WebSocket(scheme + location.host + '/ws?room=' + room + '&username=' + name);

            ws.onopen = function() {
                addLine('Connected to room ' + decodeURIComponent(room));
                updateStatus(true);
            };

            ws.onmessage = function(event) {
                const data = JSON.parse(event.data);
                if (data.type === 'message') {
                    addChat(data);
                } else if (data.type === 'history') {
                    messagesDiv.innerHTML = '';
                    data.messages.forEach(addChat);
                } else if (data.type === 'userCount') {
                    countDiv.textContent = 'Participants: ' + data.count;
                } else if (data.type === 'error') {
                    addLine('Error: ' + data.message, '#dc2626');
                }
            };

            ws.onclose = function(event) {
                addLine('Connection closed (' + event.code + (event.reason ? ': ' + event.reason : '') + ')');
                ws = null;
                updateStatus(false);
                if (wanted) {
                    setTimeout(connect, 3000);
                }
            };
        }

        function toggleConnection() {
            wanted = !wanted;
            if (wanted) {
                connect();
            } else if (ws) {
                ws.close();
            }
            updateStatus(ws && ws.readyState === WebSocket.OPEN);
        }

        function sendMessage() {
            const content = messageInput.value.trim();
            if (content && ws && ws.readyState === WebSocket.OPEN) {
                ws.send(JSON.stringify({ type: 'message', content: content }));
                messageInput.value = '';
            }
        }

        messageInput.addEventListener('keypress', function(e) {
            if (e.key === 'Enter') {
                sendMessage();
            }
        });
    </script>
</body>
</html>`
